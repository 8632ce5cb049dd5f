// Package attachment implements the Attachment Side-channel
// (SPEC_FULL.md §4.6): on create/patch, minting pre-signed upload URLs
// for each key in a document's attachments.documents array; on read,
// after redaction, substituting that same array with decoded blob
// content.
//
// Decode order per key is UTF-8, then base64, then a raw byte-string
// fallback. Blob fetches run concurrently via golang.org/x/sync/errgroup,
// bounded by a worker limit, preserving input order in the output array
// — this fulfills the original implementation's own "v1 - brute force,
// get each id in serial. Replace with multi-stream download" note.
//
// This side-channel is gated by a boolean configuration flag; disabled,
// it is a pass-through. It must only ever run on already-redacted
// documents: pruned attachments must not leak blob URLs or contents.
package attachment
