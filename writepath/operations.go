package writepath

import (
	"context"

	"github.com/aclgate/aclgate/label"
)

// Create runs gates 1–2 against body and, only if both pass, inserts the
// document. No partial state is ever visible to the store: the insert
// call happens after both gates have already succeeded.
func (g *Gates) Create(ctx context.Context, resource string, principal label.Principal, body map[string]any) (id string, err error) {
	required := g.CollectBodyLabels(resource, body)
	if err := g.AdmitBodyLabels(resource, principal, required); err != nil {
		return "", err
	}
	return g.Executor.Insert(ctx, resource, body)
}

// Patch runs gates 1–3 against patch and, only if all three pass, applies
// the update. Per §4.5 "Atomicity", failing any gate aborts the whole
// request before the store is touched — the update call is the last
// statement in this function, reachable only once every gate is clear.
func (g *Gates) Patch(ctx context.Context, resource, id string, principal label.Principal, patch map[string]any) error {
	required := g.CollectBodyLabels(resource, patch)
	if err := g.AdmitBodyLabels(resource, principal, required); err != nil {
		return err
	}
	if err := g.AdmitStoredData(ctx, resource, id, principal, g.PatchRelevantPaths(resource, patch)); err != nil {
		return err
	}
	return g.Executor.Update(ctx, resource, id, patch)
}

// Delete runs gate 3 against the whole document and, only if it passes,
// deletes it.
func (g *Gates) Delete(ctx context.Context, resource, id string, principal label.Principal) error {
	if err := g.AdmitStoredData(ctx, resource, id, principal, g.DeleteRelevantPaths(resource)); err != nil {
		return err
	}
	return g.Executor.Delete(ctx, resource, id)
}
