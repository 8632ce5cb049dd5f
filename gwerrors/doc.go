// Package gwerrors provides the structured error kinds used across the
// gateway (schema-missing, body-malformed, permission-denied,
// store-unreachable) and the minimal structured-logging interface every
// other package accepts.
//
// Error types support errors.Is via sentinel values and errors.As via the
// concrete struct types, so callers can branch on error category without
// string matching.
package gwerrors
