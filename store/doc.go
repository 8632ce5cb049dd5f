// Package store defines the narrow collaborator interfaces this gateway
// consumes: the document database's aggregation executor, the blob-store
// client backing the attachment side-channel, and the permission lookup
// behind HTTP Basic auth. Per SPEC_FULL.md §1, these are explicitly
// out of scope for the engine itself — production code supplies real
// implementations backed by a document database and an object store.
//
// This package also ships MemoryExecutor, an in-memory reference
// implementation of Executor that interprets a rewriter.Plan the way a
// document database's aggregation engine would. It serves tests, the
// mcptools introspection surface (SPEC_FULL.md §10), and cmd/aclgated's
// "serve" command, which uses it (with MemoryBlobStore and
// MemoryPermissionLookup) as its default collaborators.
package store
