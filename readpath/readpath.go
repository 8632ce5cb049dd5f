package readpath

import (
	"context"

	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/label"
	"github.com/aclgate/aclgate/rewriter"
	"github.com/aclgate/aclgate/schema"
)

// BeforeAggregation is the single Read Path operation: it rewrites base
// against every labelled path of resource for principal. Per spec.md §7,
// schema-missing is not itself an error here: an unregistered resource is
// treated as "no labelled paths beyond the root" (reg.LabelledPaths
// already degrades to [""] for it) and the read path proceeds normally.
// Errors surface up to the caller (the HTTP layer); on success the
// caller runs the returned plan through its aggregation executor
// unmodified.
func BeforeAggregation(_ context.Context, resource string, principal label.Principal, base rewriter.Plan, reg *schema.Registry, log gwerrors.Logger) (rewriter.Plan, error) {
	if log == nil {
		log = gwerrors.NoopLogger()
	}
	if !reg.Known(resource) {
		log.Debug("read path: resource not registered, treating as root-only", "resource", resource)
	}
	plan, err := rewriter.Rewrite(resource, principal, base, reg)
	if err != nil {
		return nil, err
	}
	log.Debug("read path: rewrote plan", "resource", resource, "stages", len(plan))
	return plan, nil
}
