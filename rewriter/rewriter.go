package rewriter

import (
	"sort"

	"github.com/aclgate/aclgate/label"
	"github.com/aclgate/aclgate/schema"
)

const (
	idSentinelWildcard   = "*"
	idSentinelUnresolved = "$id"
	catMatchesField      = "cat_matches"
	dissMatchesField     = "diss_matches"
	falseStr             = "false"
	trueStr              = "true"
)

// Rewrite produces the rewritten plan for resource, deriving the
// resource's labelled paths from reg and evaluating them against
// principal. This is the entry point used by the Read Path (§4.4), which
// rewrites against every labelled path of the resource.
func Rewrite(resource string, principal label.Principal, base Plan, reg *schema.Registry) (Plan, error) {
	return RewriteForPaths(principal, base, reg.LabelledPaths(resource))
}

// RewriteForPaths is the schema-independent core of the rewriter: given
// an explicit, caller-supplied list of labelled paths (always including
// the root path ""), it implements Stage 0 through Stage 3 exactly as
// specified. The Write Path's stored-data admission gate uses this
// directly with a restricted path list (root plus only the fields a
// patch/delete touches), rather than the resource's full labelled-path
// list.
func RewriteForPaths(principal label.Principal, base Plan, paths []string) (Plan, error) {
	plan := wildcardIDMatch(base)

	catPerms := sortedKeys(principal.Cats)
	dissPerms := sortedKeys(principal.Diss)

	for _, p := range paths {
		plan = append(plan, annotateCat(p, catPerms), annotateDiss(p, dissPerms))
	}

	plan = append(plan, pruneOn(catMatchesField), pruneOn(dissMatchesField))
	plan = append(plan, projectMetadata(paths))

	return plan, nil
}

// wildcardIDMatch implements Stage 0: any $match stage whose "_id"
// constraint is the literal sentinel "*" or the unresolved placeholder
// "$id" has that constraint replaced with an existence predicate, so
// every document qualifies. This compensates for an upstream query
// binder that may fail to strip an unbound aggregation variable.
func wildcardIDMatch(base Plan) Plan {
	plan := base.Clone()
	for i, stage := range plan {
		if stage.Kind != Match {
			continue
		}
		idVal, ok := stage.Body["_id"]
		if !ok {
			continue
		}
		if s, ok := idVal.(string); ok && (s == idSentinelWildcard || s == idSentinelUnresolved) {
			plan[i].Body["_id"] = map[string]any{"$exists": trueStr}
		}
	}
	return plan
}

func pathPrefix(path string) string {
	if path == "" {
		return ""
	}
	return path + "."
}

// annotateCat builds the cat_matches $addFields stage for path. Per the
// resolved Open Question (see DESIGN.md), the category evaluation result
// is wrapped doubly — [[rule]] — because the stored category field is a
// scalar and this is the exact shape the original implementation used
// for its scalar-valued rule fields.
func annotateCat(path string, catPerms []string) Stage {
	field := pathPrefix(path) + catMatchesField
	ruleField := "$" + pathPrefix(path) + "_sec.cat"
	return Stage{
		Kind: AddFields,
		Body: map[string]any{
			field: matchExpr([]any{[]any{ruleField}}, catPerms),
		},
	}
}

// annotateDiss builds the diss_matches $addFields stage for path. The
// dissemination field is stored as an array, so its evaluation result is
// wrapped singly — [rule] — per the resolved Open Question.
func annotateDiss(path string, dissPerms []string) Stage {
	field := pathPrefix(path) + dissMatchesField
	ruleField := "$" + pathPrefix(path) + "_sec.diss"
	return Stage{
		Kind: AddFields,
		Body: map[string]any{
			field: matchExpr([]any{ruleField}, dissPerms),
		},
	}
}

// matchExpr builds the $map/$cond/$setIsSubset expression shared by both
// annotation stages: for each element of input (a 1-element array), test
// whether it is a subset of userPerms and record "true"/"false".
func matchExpr(input []any, userPerms []string) map[string]any {
	perms := make([]any, len(userPerms))
	for i, p := range userPerms {
		perms[i] = p
	}
	return map[string]any{
		"$map": map[string]any{
			"input": input,
			"as":    "rule",
			"in": map[string]any{
				"$cond": map[string]any{
					"if": map[string]any{
						"$setIsSubset": []any{
							map[string]any{"$ifNull": []any{"$$rule", []any{}}},
							perms,
						},
					},
					"then": trueStr,
					"else": falseStr,
				},
			},
		},
	}
}

// pruneOn builds the $redact stage for field (either cat_matches or
// diss_matches). Evaluated at every sub-document encountered during
// outer-to-inner descent: if field is absent at this level, descend with
// no decision; if it contains "false", prune this sub-document and
// everything inside it; otherwise descend.
func pruneOn(field string) Stage {
	return Stage{
		Kind: Redact,
		Body: map[string]any{
			"$cond": map[string]any{
				"if": map[string]any{
					"$setIsSubset": []any{
						[]any{falseStr},
						map[string]any{"$ifNull": []any{"$" + field, []any{trueStr}}},
					},
				},
				"then": "$$PRUNE",
				"else": "$$DESCEND",
			},
		},
	}
}

// projectMetadata builds the final $project stage excluding every
// cat_matches/diss_matches field at every labelled path — the root path
// elides to the bare field names, nested paths prefix with the dotted
// path.
func projectMetadata(paths []string) Stage {
	body := map[string]any{}
	for _, p := range paths {
		prefix := pathPrefix(p)
		body[prefix+catMatchesField] = 0
		body[prefix+dissMatchesField] = 0
	}
	return Stage{Kind: Project, Body: body}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
