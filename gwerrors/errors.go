package gwerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrSchemaMissing indicates a resource has no registered schema.
	ErrSchemaMissing = errors.New("schema missing")

	// ErrBodyMalformed indicates a write request body could not be parsed
	// as a document tree.
	ErrBodyMalformed = errors.New("body malformed")

	// ErrPermissionDenied indicates a write-path gate rejected the request.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrStoreUnreachable indicates the document store or blob store
	// could not be reached.
	ErrStoreUnreachable = errors.New("store unreachable")
)

// SchemaMissingError records that a resource name has no registered
// schema. It is not user-visible on the read path (the engine proceeds
// with "no labelled paths beyond the root"). No package in this module
// returns it: the write path does not check a body for a root label, so
// an unregistered resource or a body without "_sec" is admitted on its
// other gates alone.
type SchemaMissingError struct {
	Resource string
}

func (e *SchemaMissingError) Error() string {
	return fmt.Sprintf("schema missing for resource %q", e.Resource)
}

func (e *SchemaMissingError) Unwrap() error { return ErrSchemaMissing }

// BodyMalformedError records a write request whose body could not be
// parsed as a document tree. The write path aborts with a server error
// and no mutation occurs.
type BodyMalformedError struct {
	Resource string
	Cause    error
}

func (e *BodyMalformedError) Error() string {
	msg := fmt.Sprintf("malformed body for resource %q", e.Resource)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BodyMalformedError) Unwrap() error { return ErrBodyMalformed }

// PermissionDeniedError records which write-path gate rejected a request
// and why. No mutation and no partial effect occur when this is returned.
type PermissionDeniedError struct {
	Resource string
	Gate     string // "body-label-admission" | "stored-data-admission" | "read" | "create" | "patch" | "delete"
	Reason   string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied for resource %q at gate %q: %s", e.Resource, e.Gate, e.Reason)
}

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

// StoreUnreachableError wraps a propagated failure from the document
// store or blob store collaborator. It is never retried and never hidden.
type StoreUnreachableError struct {
	Op    string
	Cause error
}

func (e *StoreUnreachableError) Error() string {
	msg := fmt.Sprintf("store unreachable during %s", e.Op)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StoreUnreachableError) Unwrap() error { return ErrStoreUnreachable }
