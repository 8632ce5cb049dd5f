package rewriter

import (
	"testing"

	"github.com/aclgate/aclgate/label"
	"github.com/aclgate/aclgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalWith(cats, diss []string) label.Principal {
	return label.NewPrincipal(cats, diss)
}

func TestRewriteForPaths_WildcardIDMatchExpandsToExists(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "*"}}}
	plan, err := RewriteForPaths(principalWith(nil, nil), base, []string{""})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"$exists": trueStr}, plan[0].Body["_id"])
}

func TestRewriteForPaths_UnresolvedIDPlaceholderExpands(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "$id"}}}
	plan, err := RewriteForPaths(principalWith(nil, nil), base, []string{""})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"$exists": trueStr}, plan[0].Body["_id"])
}

func TestRewriteForPaths_ConcreteIDUnchanged(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "doc-1"}}}
	plan, err := RewriteForPaths(principalWith(nil, nil), base, []string{""})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", plan[0].Body["_id"])
}

func TestRewriteForPaths_DoesNotMutateBasePlan(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "*"}}}
	_, err := RewriteForPaths(principalWith(nil, nil), base, []string{""})
	require.NoError(t, err)
	assert.Equal(t, "*", base[0].Body["_id"], "base plan must be left untouched")
}

func TestRewriteForPaths_RootAnnotation_CatWrappedDoublyDissWrappedSingly(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "doc-1"}}}
	plan, err := RewriteForPaths(principalWith([]string{"usg_unclassified"}, []string{"usg_noforn"}), base, []string{""})
	require.NoError(t, err)

	var catStage, dissStage Stage
	for _, s := range plan {
		if s.Kind != AddFields {
			continue
		}
		if _, ok := s.Body["cat_matches"]; ok {
			catStage = s
		}
		if _, ok := s.Body["diss_matches"]; ok {
			dissStage = s
		}
	}
	require.NotNil(t, catStage.Body)
	require.NotNil(t, dissStage.Body)

	catExpr := catStage.Body["cat_matches"].(map[string]any)
	catInput := catExpr["$map"].(map[string]any)["input"].([]any)
	assert.Equal(t, []any{[]any{"$_sec.cat"}}, catInput, "category rule field must be doubly wrapped")

	dissExpr := dissStage.Body["diss_matches"].(map[string]any)
	dissInput := dissExpr["$map"].(map[string]any)["input"].([]any)
	assert.Equal(t, []any{"$_sec.diss"}, dissInput, "dissemination rule field must be singly wrapped")
}

func TestRewriteForPaths_NestedPathFieldsAreDotted(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "doc-1"}}}
	plan, err := RewriteForPaths(principalWith(nil, nil), base, []string{"", "FeeID"})
	require.NoError(t, err)

	var fieldNames []string
	for _, s := range plan {
		if s.Kind != AddFields {
			continue
		}
		for k := range s.Body {
			fieldNames = append(fieldNames, k)
		}
	}
	assert.Contains(t, fieldNames, "cat_matches")
	assert.Contains(t, fieldNames, "diss_matches")
	assert.Contains(t, fieldNames, "FeeID.cat_matches")
	assert.Contains(t, fieldNames, "FeeID.diss_matches")
}

func TestRewriteForPaths_ProjectStageExcludesEveryPathsMatchFields(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "doc-1"}}}
	plan, err := RewriteForPaths(principalWith(nil, nil), base, []string{"", "FeeID"})
	require.NoError(t, err)

	last := plan[len(plan)-1]
	require.Equal(t, Project, last.Kind)
	assert.Equal(t, 0, last.Body["cat_matches"])
	assert.Equal(t, 0, last.Body["diss_matches"])
	assert.Equal(t, 0, last.Body["FeeID.cat_matches"])
	assert.Equal(t, 0, last.Body["FeeID.diss_matches"])
}

func TestRewriteForPaths_EmitsTwoRedactStagesForPruning(t *testing.T) {
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "doc-1"}}}
	plan, err := RewriteForPaths(principalWith(nil, nil), base, []string{""})
	require.NoError(t, err)

	var redactCount int
	for _, s := range plan {
		if s.Kind == Redact {
			redactCount++
		}
	}
	assert.Equal(t, 2, redactCount)
}

func TestRewrite_DerivesLabelledPathsFromRegistry(t *testing.T) {
	reg, err := schema.LoadYAML([]byte(`
fees:
  type: dict
  schema:
    _sec:
      type: dict
      schema:
        cat: {type: string}
        diss: {type: list, schema: {type: string}}
    FeeID:
      type: dict
      schema:
        _sec:
          type: dict
          schema:
            cat: {type: string}
            diss: {type: list, schema: {type: string}}
        value: {type: string}
`))
	require.NoError(t, err)

	base := Plan{{Kind: Match, Body: map[string]any{"_id": "doc-1"}}}
	plan, err := Rewrite("fees", principalWith(nil, nil), base, reg)
	require.NoError(t, err)

	last := plan[len(plan)-1]
	require.Equal(t, Project, last.Kind)
	assert.Contains(t, last.Body, "cat_matches")
	assert.Contains(t, last.Body, "FeeID.cat_matches")
}

func TestRewrite_UnknownResourceDegradesToRootOnly(t *testing.T) {
	reg := schema.NewRegistry(nil)
	base := Plan{{Kind: Match, Body: map[string]any{"_id": "doc-1"}}}
	plan, err := Rewrite("ghost", principalWith(nil, nil), base, reg)
	require.NoError(t, err)

	var addFieldsCount int
	for _, s := range plan {
		if s.Kind == AddFields {
			addFieldsCount++
		}
	}
	assert.Equal(t, 2, addFieldsCount, "an unknown resource still gets exactly the root path's two annotation stages")
}
