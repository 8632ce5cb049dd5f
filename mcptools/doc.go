// Package mcptools exposes an MCP (Model Context Protocol) server with
// two read-only, side-effect-free operator/audit tools (SPEC_FULL.md
// §10): describe_schema, which reports a resource's labelled-path list,
// and simulate_dominance, which runs a document through the same
// rewriter pipeline shape the Read Path uses, against an ephemeral
// in-memory evaluator rather than the real store. Neither tool ever
// touches the production document database or blob store.
package mcptools
