package attachment

import (
	"context"
	"testing"

	"github.com/aclgate/aclgate/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresignForWrite_MintsURLPerKey(t *testing.T) {
	blobs := store.NewMemoryBlobStore()
	p := NewProcessor(blobs, true, 0, nil)

	body := map[string]any{
		"attachments": map[string]any{"documents": []any{"k1", "k2"}},
	}
	urls, err := p.PresignForWrite(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "k1")
	assert.Contains(t, urls[1], "k2")
}

func TestPresignForWrite_DisabledIsPassthrough(t *testing.T) {
	blobs := store.NewMemoryBlobStore()
	p := NewProcessor(blobs, false, 0, nil)

	urls, err := p.PresignForWrite(context.Background(), map[string]any{
		"attachments": map[string]any{"documents": []any{"k1"}},
	})
	require.NoError(t, err)
	assert.Nil(t, urls)
}

func TestSubstituteForRead_DecodesUTF8AndFallsBackToRaw(t *testing.T) {
	blobs := store.NewMemoryBlobStore()
	blobs.Put("plain", []byte("hello world"))
	invalidUTF8 := []byte{0xff, 0xfe, 0x00, 0x01}
	blobs.Put("binary", invalidUTF8)

	p := NewProcessor(blobs, true, 0, nil)
	docs := []map[string]any{
		{"attachments": map[string]any{"documents": []any{"plain", "binary"}}},
	}
	require.NoError(t, p.SubstituteForRead(context.Background(), docs))

	resolved := docs[0]["attachments"].(map[string]any)["documents"].([]any)
	require.Len(t, resolved, 2)
	assert.Equal(t, "hello world", resolved[0])
	assert.Equal(t, string(invalidUTF8), resolved[1])
}

func TestSubstituteForRead_SkipsDocumentsWithoutAttachments(t *testing.T) {
	blobs := store.NewMemoryBlobStore()
	p := NewProcessor(blobs, true, 0, nil)
	docs := []map[string]any{{"FeeID": "1"}}
	require.NoError(t, p.SubstituteForRead(context.Background(), docs))
	assert.Equal(t, "1", docs[0]["FeeID"])
}
