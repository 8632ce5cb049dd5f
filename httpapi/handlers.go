package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/readpath"
	"github.com/aclgate/aclgate/rewriter"
)

// handleRead implements GET /{R} and GET /{R}?aggregate={"$id":"<oid>"}.
func (s *Server) handleRead(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(s, w, &gwerrors.PermissionDeniedError{Resource: resource, Gate: "read", Reason: "no principal context"})
			return
		}

		base := rewriter.Plan{{Kind: rewriter.Match, Body: map[string]any{"_id": "*"}}}
		if raw := r.URL.Query().Get("aggregate"); raw != "" {
			var match map[string]any
			if err := json.Unmarshal([]byte(raw), &match); err != nil {
				writeError(s, w, &gwerrors.BodyMalformedError{Resource: resource, Cause: err})
				return
			}
			base = rewriter.Plan{{Kind: rewriter.Match, Body: match}}
			if id, ok := match["$id"]; ok {
				base = rewriter.Plan{{Kind: rewriter.Match, Body: map[string]any{"_id": id}}}
			}
		}

		plan, err := readpath.BeforeAggregation(r.Context(), resource, principal, base, s.Registry, s.Log)
		if err != nil {
			writeError(s, w, err)
			return
		}

		docs, err := s.Executor.Aggregate(r.Context(), resource, plan)
		if err != nil {
			writeError(s, w, &gwerrors.StoreUnreachableError{Op: "aggregate", Cause: err})
			return
		}

		if s.Attachments != nil {
			if err := s.Attachments.SubstituteForRead(r.Context(), docs); err != nil {
				writeError(s, w, &gwerrors.StoreUnreachableError{Op: "attachment fetch", Cause: err})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
	}
}

// handleCreate implements POST /{R}_write.
func (s *Server) handleCreate(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(s, w, &gwerrors.PermissionDeniedError{Resource: resource, Gate: "create", Reason: "no principal context"})
			return
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(s, w, &gwerrors.BodyMalformedError{Resource: resource, Cause: err})
			return
		}

		id, err := s.Gates.Create(r.Context(), resource, principal, body)
		if err != nil {
			writeError(s, w, err)
			return
		}

		// Presigning only after the gates admit the write — a denied
		// create must never hand back usable upload credentials for
		// the rejected body's blob keys.
		var presigned []string
		if s.Attachments != nil {
			urls, err := s.Attachments.PresignForWrite(r.Context(), body)
			if err != nil {
				writeError(s, w, &gwerrors.StoreUnreachableError{Op: "presign upload", Cause: err})
				return
			}
			presigned = urls
		}

		resp := map[string]any{"_id": id}
		if len(presigned) > 0 {
			resp["_presigned_urls"] = presigned
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// handlePatch implements PATCH /{R}_write/{oid}.
func (s *Server) handlePatch(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(s, w, &gwerrors.PermissionDeniedError{Resource: resource, Gate: "patch", Reason: "no principal context"})
			return
		}
		oid := oidParam(r)

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(s, w, &gwerrors.BodyMalformedError{Resource: resource, Cause: err})
			return
		}

		if err := s.Gates.Patch(r.Context(), resource, oid, principal, patch); err != nil {
			writeError(s, w, err)
			return
		}

		// Presigning only after the gates admit the write — a denied
		// patch must never hand back usable upload credentials for
		// the rejected patch's blob keys.
		var presigned []string
		if s.Attachments != nil {
			urls, err := s.Attachments.PresignForWrite(r.Context(), patch)
			if err != nil {
				writeError(s, w, &gwerrors.StoreUnreachableError{Op: "presign upload", Cause: err})
				return
			}
			presigned = urls
		}

		resp := map[string]any{"_id": oid}
		if len(presigned) > 0 {
			resp["_presigned_urls"] = presigned
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleDelete implements DELETE /{R}_write/{oid}.
func (s *Server) handleDelete(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeError(s, w, &gwerrors.PermissionDeniedError{Resource: resource, Gate: "delete", Reason: "no principal context"})
			return
		}
		oid := oidParam(r)

		if err := s.Gates.Delete(r.Context(), resource, oid, principal); err != nil {
			writeError(s, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a gwerrors kind to a status code per spec.md §7/§6:
// permission-denied -> 403, body-malformed/store-unreachable -> 500.
func writeError(s *Server, w http.ResponseWriter, err error) {
	var denied *gwerrors.PermissionDeniedError
	var malformed *gwerrors.BodyMalformedError
	var unreachable *gwerrors.StoreUnreachableError
	var schemaMissing *gwerrors.SchemaMissingError

	switch {
	case errors.As(err, &denied):
		writeJSON(w, http.StatusForbidden, map[string]any{"error": denied.Error()})
	case errors.As(err, &malformed):
		s.Log.Error("http: malformed body", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": malformed.Error()})
	case errors.As(err, &unreachable):
		s.Log.Error("http: store unreachable", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": unreachable.Error()})
	case errors.As(err, &schemaMissing):
		s.Log.Warn("http: schema missing", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": schemaMissing.Error()})
	default:
		s.Log.Error("http: unclassified error", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}
