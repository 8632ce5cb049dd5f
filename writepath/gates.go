package writepath

import (
	"context"
	"strings"

	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/label"
	"github.com/aclgate/aclgate/rewriter"
	"github.com/aclgate/aclgate/schema"
	"github.com/aclgate/aclgate/store"
)

// Gates bundles the collaborators the three Write Path gates need: the
// Schema Registry (to resolve labelled paths) and the store.Executor (to
// run the stored-data admission probe).
type Gates struct {
	Registry *schema.Registry
	Executor store.Executor
	Log      gwerrors.Logger
}

// NewGates constructs a Gates. log may be nil, in which case a no-op
// Logger is used.
func NewGates(reg *schema.Registry, exec store.Executor, log gwerrors.Logger) *Gates {
	if log == nil {
		log = gwerrors.NoopLogger()
	}
	return &Gates{Registry: reg, Executor: exec, Log: log}
}

// CollectBodyLabels is gate 1 (create, patch): parses the request body as
// a document tree and collects every classification/dissemination token
// the labelled sub-trees present in body actually carry.
func (g *Gates) CollectBodyLabels(resource string, body map[string]any) map[string]struct{} {
	paths := g.Registry.LabelledPaths(resource)
	return label.CollectRequired(body, paths)
}

// AdmitBodyLabels is gate 2 (create, patch): fails with permission-denied
// if any token collected by gate 1 is absent from the principal's
// clearance.
func (g *Gates) AdmitBodyLabels(resource string, principal label.Principal, required map[string]struct{}) error {
	ok, missing := label.Satisfies(principal, required)
	if !ok {
		return &gwerrors.PermissionDeniedError{
			Resource: resource,
			Gate:     "body-label-admission",
			Reason:   "principal lacks token " + missing,
		}
	}
	return nil
}

// AdmitStoredData is gate 3 (patch, delete): builds a probe pipeline
// matching the target document's _id, rewrites it restricted to
// relevantPaths, and runs it through the store. $redact only prunes the
// offending sub-document, not the whole top-level document, so an
// overall non-empty result is not sufficient evidence of admission — a
// nested labelled path can fail while the root (and therefore the
// document itself) survives. Every path in relevantPaths that exists in
// the stored document must still resolve in the probe result; a path the
// stored document does not have contributes no decision.
func (g *Gates) AdmitStoredData(ctx context.Context, resource, id string, principal label.Principal, relevantPaths []string) error {
	probe := rewriter.Plan{
		{Kind: rewriter.Match, Body: map[string]any{"_id": id}},
	}
	plan, err := rewriter.RewriteForPaths(principal, probe, relevantPaths)
	if err != nil {
		return err
	}
	results, err := g.Executor.Aggregate(ctx, resource, plan)
	if err != nil {
		return &gwerrors.StoreUnreachableError{Op: "stored-data-admission probe", Cause: err}
	}
	if len(results) == 0 {
		return &gwerrors.PermissionDeniedError{
			Resource: resource,
			Gate:     "stored-data-admission",
			Reason:   "probe pipeline returned no admissible document",
		}
	}
	doc := results[0]
	var stored map[string]any
	for _, p := range relevantPaths {
		if pathPresent(doc, p) {
			continue
		}
		if stored == nil {
			raw, err := g.Executor.Aggregate(ctx, resource, probe)
			if err != nil {
				return &gwerrors.StoreUnreachableError{Op: "stored-data-admission probe", Cause: err}
			}
			if len(raw) > 0 {
				stored = raw[0]
			}
		}
		if pathPresent(stored, p) {
			return &gwerrors.PermissionDeniedError{
				Resource: resource,
				Gate:     "stored-data-admission",
				Reason:   "principal does not dominate label at path " + pathLabel(p),
			}
		}
	}
	return nil
}

// pathPresent reports whether the dotted path is still reachable in doc
// after redaction — the root path is "present" iff doc itself survived.
func pathPresent(doc map[string]any, path string) bool {
	if doc == nil {
		return false
	}
	if path == "" {
		return true
	}
	cur := any(doc)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		next, ok := m[seg]
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

func pathLabel(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

// PatchRelevantPaths returns the restricted path list gate 3 uses for a
// patch: the document root plus every labelled path whose top-level
// field is present in patch.
func (g *Gates) PatchRelevantPaths(resource string, patch map[string]any) []string {
	paths := []string{""}
	for _, p := range g.Registry.LabelledPaths(resource) {
		if p == "" {
			continue
		}
		top := p
		if i := strings.IndexByte(p, '.'); i >= 0 {
			top = p[:i]
		}
		if _, touched := patch[top]; touched {
			paths = append(paths, p)
		}
	}
	return paths
}

// DeleteRelevantPaths returns the restricted path list gate 3 uses for a
// delete: the document root plus every labelled path of the resource,
// since a delete affects the whole document.
func (g *Gates) DeleteRelevantPaths(resource string) []string {
	return g.Registry.LabelledPaths(resource)
}
