// Package writepath implements the Write Path (SPEC_FULL.md §4.5): the
// three ordered admission gates applied to create, patch, and delete
// requests before any mutation reaches the store.
//
//  1. Body-label collection (create, patch)
//  2. Body-label admission (create, patch)
//  3. Stored-data admission (patch, delete)
//
// Gates run strictly in this order; a request that fails any gate is
// rejected with permission-denied before the store is touched. Write
// admission is atomic: nothing is emitted to the store until every
// relevant gate has passed.
package writepath
