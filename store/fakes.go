package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/aclgate/aclgate/label"
)

// MemoryBlobStore is an in-process reference BlobStore: presigned URLs are
// deterministic strings derived from the key, and Get serves back whatever
// was registered with Put. Used by tests and as cmd/aclgated's default
// BlobStore for "serve".
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Put registers content under key, simulating a completed upload through
// a presigned URL previously minted by PresignUpload.
func (b *MemoryBlobStore) Put(key string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = content
}

func (b *MemoryBlobStore) PresignUpload(_ context.Context, key string) (string, error) {
	return fmt.Sprintf("https://blobs.invalid/upload/%s", key), nil
}

func (b *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	content, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("store: blob %q not found", key)
	}
	return content, nil
}

// MemoryPermissionLookup is an in-process reference PermissionLookup
// backed by a static username-to-Principal map.
type MemoryPermissionLookup struct {
	principals map[string]label.Principal
}

func NewMemoryPermissionLookup(principals map[string]label.Principal) *MemoryPermissionLookup {
	if principals == nil {
		principals = map[string]label.Principal{}
	}
	return &MemoryPermissionLookup{principals: principals}
}

func (l *MemoryPermissionLookup) Lookup(_ context.Context, username string) (label.Principal, error) {
	p, ok := l.principals[username]
	if !ok {
		return label.Principal{}, fmt.Errorf("store: no principal registered for user %q", username)
	}
	return p, nil
}
