package store

import (
	"context"

	"github.com/aclgate/aclgate/label"
	"github.com/aclgate/aclgate/rewriter"
)

// Executor runs a rewritten aggregation plan against a resource's
// collection in the document database and returns the resulting
// documents. It is the one blocking collaborator the Read Path and the
// Write Path's stored-data admission gate depend on.
type Executor interface {
	Aggregate(ctx context.Context, resource string, plan rewriter.Plan) ([]map[string]any, error)
	// Insert, Update, and Delete perform the actual mutation once a write
	// request has cleared every Write Path gate. They take no label
	// arguments: admission has already been decided by the time these are
	// called.
	Insert(ctx context.Context, resource string, doc map[string]any) (id string, err error)
	Update(ctx context.Context, resource, id string, patch map[string]any) error
	Delete(ctx context.Context, resource, id string) error
}

// BlobStore is the narrow collaborator behind the Attachment
// Side-channel (§4.6): minting pre-signed upload URLs and fetching raw
// blob content by key.
type BlobStore interface {
	PresignUpload(ctx context.Context, key string) (url string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// PermissionLookup resolves an authenticated username to the Principal
// Context it is cleared for (§2 item 2). Credential verification itself
// is out of scope (§1); this interface only covers what happens after a
// username has already been authenticated.
type PermissionLookup interface {
	Lookup(ctx context.Context, username string) (label.Principal, error)
}
