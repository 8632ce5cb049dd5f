// Package config loads the gateway's recognized configuration options
// (SPEC_FULL.md §6): database connection parameters, blob-store
// credentials and bucket, the attachment-mode flag, the mcp-tools flag,
// and the schema source. Values come from a YAML document with
// environment-variable overrides layered on top, mirroring the
// environment-first convention of the original settings module.
package config
