package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aclgate/aclgate/rewriter"
	"github.com/google/uuid"
)

// MemoryExecutor is an in-process reference Executor backed by a plain
// map of documents per resource. It interprets the four stage kinds a
// rewriter.Plan can contain ($match, $addFields, $redact, $project)
// closely enough to exercise every invariant in SPEC_FULL.md §8 without a
// real document database.
type MemoryExecutor struct {
	mu    sync.RWMutex
	docs  map[string]map[string]map[string]any // resource -> id -> document
	idGen func() string
}

// NewMemoryExecutor returns an empty MemoryExecutor.
func NewMemoryExecutor() *MemoryExecutor {
	return &MemoryExecutor{
		docs:  make(map[string]map[string]map[string]any),
		idGen: func() string { return uuid.NewString() },
	}
}

// Seed inserts doc under resource/id directly, bypassing any gate —
// intended for test fixture setup.
func (m *MemoryExecutor) Seed(resource, id string, doc map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[resource] == nil {
		m.docs[resource] = make(map[string]map[string]any)
	}
	m.docs[resource][id] = deepCopy(doc).(map[string]any)
}

// Get returns a deep copy of the stored document, or nil if absent.
func (m *MemoryExecutor) Get(resource, id string) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[resource][id]
	if !ok {
		return nil
	}
	return deepCopy(doc).(map[string]any)
}

func (m *MemoryExecutor) Insert(_ context.Context, resource string, doc map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[resource] == nil {
		m.docs[resource] = make(map[string]map[string]any)
	}
	id := m.idGen()
	m.docs[resource][id] = deepCopy(doc).(map[string]any)
	return id, nil
}

func (m *MemoryExecutor) Update(_ context.Context, resource, id string, patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[resource][id]
	if !ok {
		return fmt.Errorf("store: document %s/%s not found", resource, id)
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (m *MemoryExecutor) Delete(_ context.Context, resource, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[resource][id]; !ok {
		return fmt.Errorf("store: document %s/%s not found", resource, id)
	}
	delete(m.docs[resource], id)
	return nil
}

// Aggregate interprets plan against every document stored for resource.
func (m *MemoryExecutor) Aggregate(_ context.Context, resource string, plan rewriter.Plan) ([]map[string]any, error) {
	m.mu.RLock()
	working := make([]map[string]any, 0, len(m.docs[resource]))
	for _, doc := range m.docs[resource] {
		working = append(working, deepCopy(doc).(map[string]any))
	}
	m.mu.RUnlock()

	for _, stage := range plan {
		var err error
		switch stage.Kind {
		case rewriter.Match:
			working = applyMatch(working, stage.Body)
		case rewriter.AddFields:
			for _, doc := range working {
				applyAddFields(doc, stage.Body)
			}
		case rewriter.Redact:
			field, required := redactFieldAndRequired(stage.Body)
			next := make([]map[string]any, 0, len(working))
			for _, doc := range working {
				if out := applyRedact(doc, field, required); out != nil {
					next = append(next, out.(map[string]any))
				}
			}
			working = next
		case rewriter.Project:
			for _, doc := range working {
				for field, v := range stage.Body {
					if toInt(v) == 0 {
						deleteDotted(doc, field)
					}
				}
			}
		default:
			err = fmt.Errorf("store: unsupported stage %q", stage.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return working, nil
}

func applyMatch(docs []map[string]any, body map[string]any) []map[string]any {
	cond, ok := body["_id"]
	if !ok {
		return docs
	}
	if m, ok := cond.(map[string]any); ok {
		if _, exists := m["$exists"]; exists {
			return docs // existence predicate: every document qualifies
		}
	}
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		if fmt.Sprint(d["_id"]) == fmt.Sprint(cond) {
			out = append(out, d)
		}
	}
	return out
}

// applyAddFields sets each field named in body to the evaluated subset
// test, unless the underlying rule field cannot be resolved anywhere
// along its dotted path — in which case the field is left unset, per
// SPEC_FULL.md §4.3 "if a labelled sub-tree is absent ... its annotation
// stages emit nothing testable at that path".
func applyAddFields(doc map[string]any, body map[string]any) {
	for field, expr := range body {
		ruleField, userPerms, ok := extractMatchExpr(expr)
		if !ok {
			continue
		}
		val := getDotted(doc, ruleField)
		if val == nil {
			continue
		}
		result := "false"
		if isSubsetOfStrings(val, userPerms) {
			result = "true"
		}
		setDotted(doc, field, []any{result})
	}
}

// extractMatchExpr pulls the rule field reference and literal permission
// list back out of a $map/$cond/$setIsSubset expression tree, the shape
// rewriter.annotateCat/annotateDiss always build.
func extractMatchExpr(expr any) (ruleField string, userPerms []string, ok bool) {
	m, ok := expr.(map[string]any)
	if !ok {
		return "", nil, false
	}
	mapExpr, ok := m["$map"].(map[string]any)
	if !ok {
		return "", nil, false
	}
	input := mapExpr["input"]
	ruleField = firstFieldRef(input)
	if ruleField == "" {
		return "", nil, false
	}
	inExpr, _ := mapExpr["in"].(map[string]any)
	cond, _ := inExpr["$cond"].(map[string]any)
	ifExpr, _ := cond["if"].(map[string]any)
	subset, _ := ifExpr["$setIsSubset"].([]any)
	if len(subset) != 2 {
		return "", nil, false
	}
	permsAny, _ := subset[1].([]any)
	perms := make([]string, 0, len(permsAny))
	for _, p := range permsAny {
		if s, ok := p.(string); ok {
			perms = append(perms, s)
		}
	}
	return ruleField, perms, true
}

// firstFieldRef descends into a (possibly doubly-nested) literal array
// to find the single "$..." field reference string it wraps.
func firstFieldRef(v any) string {
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(t, "$") {
			return strings.TrimPrefix(t, "$")
		}
		return ""
	case []any:
		if len(t) != 1 {
			return ""
		}
		return firstFieldRef(t[0])
	default:
		return ""
	}
}

func isSubsetOfStrings(val any, perms []string) bool {
	permSet := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		permSet[p] = struct{}{}
	}
	check := func(s string) bool {
		_, ok := permSet[s]
		return ok
	}
	switch t := val.(type) {
	case string:
		return check(t)
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok || !check(s) {
				return false
			}
		}
		return true
	case []string:
		for _, s := range t {
			if !check(s) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// redactFieldAndRequired extracts the field name a pruneOn $redact stage
// tests, and always requires "false" membership to prune (the rewriter's
// pruneOn only ever builds this one shape).
func redactFieldAndRequired(body map[string]any) (field string, requireAbsent string) {
	cond, _ := body["$cond"].(map[string]any)
	ifExpr, _ := cond["if"].(map[string]any)
	subset, _ := ifExpr["$setIsSubset"].([]any)
	if len(subset) != 2 {
		return "", ""
	}
	ifNullExpr, _ := subset[1].(map[string]any)
	ifNullArgs, _ := ifNullExpr["$ifNull"].([]any)
	if len(ifNullArgs) != 2 {
		return "", ""
	}
	ref, _ := ifNullArgs[0].(string)
	return strings.TrimPrefix(ref, "$"), "false"
}

// applyRedact recursively descends doc, pruning any sub-document whose
// local field (named by fieldName) contains pruneValue.
func applyRedact(node any, fieldName, pruneValue string) any {
	switch v := node.(type) {
	case map[string]any:
		if raw, ok := v[fieldName]; ok {
			if arr, ok := raw.([]any); ok {
				for _, e := range arr {
					if s, ok := e.(string); ok && s == pruneValue {
						return nil // prune: closed under descent
					}
				}
			}
		}
		out := make(map[string]any, len(v))
		for k, val := range v {
			child := applyRedact(val, fieldName, pruneValue)
			if child == nil && isContainer(val) {
				continue
			}
			out[k] = child
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, e := range v {
			child := applyRedact(e, fieldName, pruneValue)
			if child == nil && isContainer(e) {
				continue
			}
			out = append(out, child)
		}
		return out
	default:
		return v
	}
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func getDotted(doc map[string]any, path string) any {
	cur := any(doc)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := m[seg]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// setDotted sets value at path, but only if every intermediate segment
// already exists as an object — it never synthesizes missing containers,
// so a genuinely absent labelled sub-tree is left untouched.
func setDotted(doc map[string]any, path string, value any) {
	segs := strings.Split(path, ".")
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]
		if !ok {
			return
		}
		m, ok := next.(map[string]any)
		if !ok {
			return
		}
		cur = m
	}
	cur[segs[len(segs)-1]] = value
}

func deleteDotted(doc map[string]any, path string) {
	segs := strings.Split(path, ".")
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]
		if !ok {
			return
		}
		m, ok := next.(map[string]any)
		if !ok {
			return
		}
		cur = m
	}
	delete(cur, segs[len(segs)-1])
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	default:
		return -1
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
