package attachment

import (
	"context"
	"encoding/base64"
	"unicode/utf8"

	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/store"
	"golang.org/x/sync/errgroup"
)

const (
	fieldAttachments = "attachments"
	fieldDocuments   = "documents"
	defaultWorkers   = 4
)

// Processor implements the attachment side-channel against a
// store.BlobStore. Disabled Processors are a pass-through: PresignForWrite
// returns nil and SubstituteForRead leaves documents untouched.
type Processor struct {
	Blobs   store.BlobStore
	Log     gwerrors.Logger
	Enabled bool
	Workers int
}

// NewProcessor builds a Processor. workers <= 0 defaults to a small fixed
// worker count.
func NewProcessor(blobs store.BlobStore, enabled bool, workers int, log gwerrors.Logger) *Processor {
	if log == nil {
		log = gwerrors.NoopLogger()
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Processor{Blobs: blobs, Log: log, Enabled: enabled, Workers: workers}
}

// PresignForWrite mints an upload URL for every key in
// body.attachments.documents, returning the URLs in the same order. Used
// on create and patch, only after the Write Path gates have admitted the
// request — presigning has no bearing on admission.
func (p *Processor) PresignForWrite(ctx context.Context, body map[string]any) ([]string, error) {
	if !p.Enabled {
		return nil, nil
	}
	keys := attachmentKeys(body)
	if len(keys) == 0 {
		return nil, nil
	}
	urls := make([]string, len(keys))
	for i, key := range keys {
		url, err := p.Blobs.PresignUpload(ctx, key)
		if err != nil {
			return nil, err
		}
		urls[i] = url
	}
	p.Log.Debug("attachment: minted presigned uploads", "count", len(urls))
	return urls, nil
}

// SubstituteForRead replaces, in place, the attachments.documents array of
// every document in docs with the decoded blob content for each key,
// fetched concurrently across documents and across keys within a
// document. It must run after redaction: a document or sub-tree pruned by
// the Read Path never reaches here, so no pruned attachment's key or
// content is ever fetched or returned.
func (p *Processor) SubstituteForRead(ctx context.Context, docs []map[string]any) error {
	if !p.Enabled {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)

	for _, doc := range docs {
		doc := doc
		keys := attachmentKeys(doc)
		if len(keys) == 0 {
			continue
		}
		resolved := make([]any, len(keys))
		for i, key := range keys {
			i, key := i, key
			g.Go(func() error {
				raw, err := p.Blobs.Get(ctx, key)
				if err != nil {
					return err
				}
				resolved[i] = decodeBlob(raw)
				return nil
			})
		}
		doc[fieldAttachments] = map[string]any{fieldDocuments: resolved}
	}
	return g.Wait()
}

// attachmentKeys extracts the list of attachment key strings from
// body.attachments.documents, or nil if absent.
func attachmentKeys(body map[string]any) []string {
	att, ok := body[fieldAttachments].(map[string]any)
	if !ok {
		return nil
	}
	rawDocs, ok := att[fieldDocuments].([]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(rawDocs))
	for _, d := range rawDocs {
		if s, ok := d.(string); ok {
			keys = append(keys, s)
		}
	}
	return keys
}

// decodeBlob attempts UTF-8 decoding, then base64 decoding, then falls
// back to the raw bytes cast to a string.
func decodeBlob(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(raw)); err == nil {
		return string(decoded)
	}
	return string(raw)
}
