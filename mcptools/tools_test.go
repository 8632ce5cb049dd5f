package mcptools

import (
	"context"
	"testing"

	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/schema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feesSchemaYAML = `
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
`

func setupDeps(t *testing.T) {
	t.Helper()
	reg, err := schema.LoadYAML([]byte(feesSchemaYAML))
	require.NoError(t, err)
	deps.registry = reg
	deps.log = gwerrors.NoopLogger()
}

func TestDescribeSchema_KnownResource(t *testing.T) {
	setupDeps(t)
	_, out, err := handleDescribeSchema(context.Background(), &mcp.CallToolRequest{}, describeSchemaInput{Resource: "fees"})
	require.NoError(t, err)
	assert.True(t, out.Known)
	assert.Equal(t, []string{"", "FeeID"}, out.LabelledPaths)
}

func TestDescribeSchema_UnknownResource(t *testing.T) {
	setupDeps(t)
	_, out, err := handleDescribeSchema(context.Background(), &mcp.CallToolRequest{}, describeSchemaInput{Resource: "ghost"})
	require.NoError(t, err)
	assert.False(t, out.Known)
	assert.Equal(t, []string{""}, out.LabelledPaths)
}

func TestSimulateDominance_NestedFieldPrunedForLowerPrincipal(t *testing.T) {
	setupDeps(t)
	input := simulateDominanceInput{
		Resource:  "fees",
		Principal: principalInput{Cats: []string{"usg_unclassified"}},
		Document: map[string]any{
			"_sec": map[string]any{"cat": "usg_unclassified", "diss": []any{}},
			"FeeID": map[string]any{
				"value": "471",
				"_sec":  map[string]any{"cat": "usg_secret", "diss": []any{"usg_noforn"}},
			},
		},
	}
	_, out, err := handleSimulateDominance(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.True(t, out.AdmittedRoot)

	byPath := map[string]bool{}
	for _, p := range out.Paths {
		byPath[p.Path] = p.Admitted
	}
	assert.True(t, byPath[""])
	assert.False(t, byPath["FeeID"])
}

func TestSimulateDominance_RootDeniedWhenPrincipalLacksCat(t *testing.T) {
	setupDeps(t)
	input := simulateDominanceInput{
		Resource:  "fees",
		Principal: principalInput{Cats: []string{"usg_unclassified"}},
		Document: map[string]any{
			"_sec": map[string]any{"cat": "usg_secret", "diss": []any{}},
		},
	}
	_, out, err := handleSimulateDominance(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.False(t, out.AdmittedRoot)
}
