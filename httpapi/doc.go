// Package httpapi exposes the gateway's HTTP surface (SPEC_FULL.md §6):
// per resource R, GET /R and GET /R?aggregate=... on the Read Path, and
// POST /R_write, PATCH /R_write/{oid}, DELETE /R_write/{oid} on the Write
// Path. Routing is built on github.com/go-chi/chi/v5, following the same
// NewXxxRouter(server, opts...) + chi.URLParam shape the rest of the
// corpus's chi-targeted codegen emits.
package httpapi
