package label

import "strings"

// Label is the two-dimensional security label attached to a document or a
// labelled sub-object: a single classification category plus a set of
// dissemination controls.
type Label struct {
	Cat  string
	Diss []string
}

// Principal is the per-request record of a subject's clearance: the set
// of categories it may read and the set of dissemination tokens it is
// cleared for.
type Principal struct {
	Cats map[string]struct{}
	Diss map[string]struct{}
}

// NewPrincipal builds a Principal from slices of category and
// dissemination tokens, as typically loaded from a permissions record.
func NewPrincipal(cats, diss []string) Principal {
	p := Principal{Cats: make(map[string]struct{}, len(cats)), Diss: make(map[string]struct{}, len(diss))}
	for _, c := range cats {
		p.Cats[c] = struct{}{}
	}
	for _, d := range diss {
		p.Diss[d] = struct{}{}
	}
	return p
}

// HasCat reports whether the principal is cleared for category c.
func (p Principal) HasCat(c string) bool {
	_, ok := p.Cats[c]
	return ok
}

// HasDiss reports whether the principal is cleared for dissemination token d.
func (p Principal) HasDiss(d string) bool {
	_, ok := p.Diss[d]
	return ok
}

// Dominates implements L ⊑ P: label L is dominated by principal P iff
// L.Cat is one of P's cleared categories AND L.Diss is a subset of P's
// cleared dissemination tokens. An empty L.Diss is trivially a subset.
func Dominates(p Principal, l Label) bool {
	if !p.HasCat(l.Cat) {
		return false
	}
	for _, d := range l.Diss {
		if !p.HasDiss(d) {
			return false
		}
	}
	return true
}

// CollectRequired returns the union of every category and dissemination
// token referenced by any _sec object in body — the root label plus each
// labelled sub-object actually present. Absent labels contribute nothing.
// labelledPaths is the resource's ordered labelled-path list (including
// the root path "").
func CollectRequired(body map[string]any, labelledPaths []string) map[string]struct{} {
	required := make(map[string]struct{})
	for _, path := range labelledPaths {
		obj := body
		if path != "" {
			obj = navigate(body, path)
		}
		if obj == nil {
			continue
		}
		sec, _ := obj["_sec"].(map[string]any)
		if sec == nil {
			continue
		}
		if cat, ok := sec["cat"].(string); ok && cat != "" {
			required[cat] = struct{}{}
		}
		if rawDiss, ok := sec["diss"].([]any); ok {
			for _, d := range rawDiss {
				if s, ok := d.(string); ok && s != "" {
					required[s] = struct{}{}
				}
			}
		}
	}
	return required
}

// navigate walks a dot-separated path through a tree of map[string]any,
// returning the sub-object at that path or nil if any segment is absent
// or not an object.
func navigate(body map[string]any, path string) map[string]any {
	cur := body
	for _, seg := range strings.Split(path, ".") {
		next, ok := cur[seg]
		if !ok {
			return nil
		}
		obj, ok := next.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj
	}
	return cur
}

// Satisfies reports whether every token in required is present in the
// union of the principal's categories and dissemination tokens — the
// admission test used by the write path's body-label-admission gate.
func Satisfies(p Principal, required map[string]struct{}) (ok bool, missing string) {
	for tok := range required {
		if !p.HasCat(tok) && !p.HasDiss(tok) {
			return false, tok
		}
	}
	return true, ""
}
