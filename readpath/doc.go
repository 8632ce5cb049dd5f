// Package readpath implements the Read Path (SPEC_FULL.md §4.4): the
// single hook invoked before every aggregation, which runs the Rewriter
// against the inbound plan. It never consults the store directly — the
// underlying aggregation executor runs the rewritten plan as-is.
package readpath
