package readpath

import (
	"context"
	"testing"

	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/label"
	"github.com/aclgate/aclgate/rewriter"
	"github.com/aclgate/aclgate/schema"
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

func TestBeforeAggregation_RewritesKnownResource(t *testing.T) {
	reg, err := schema.LoadYAML([]byte(feesSchemaYAML))
	require.NoError(t, err)

	p := label.NewPrincipal([]string{"usg_unclassified"}, nil)
	base := rewriter.Plan{{Kind: rewriter.Match, Body: map[string]any{"_id": "*"}}}

	plan, err := BeforeAggregation(context.Background(), "fees", p, base, reg, gwerrors.NoopLogger())
	require.NoError(t, err)
	assert.Greater(t, len(plan), len(base))
}

func TestBeforeAggregation_UnknownResourceProceedsRootOnly(t *testing.T) {
	reg := schema.NewRegistry(nil)
	p := label.NewPrincipal(nil, nil)
	base := rewriter.Plan{{Kind: rewriter.Match, Body: map[string]any{"_id": "*"}}}

	plan, err := BeforeAggregation(context.Background(), "ghost", p, base, reg, gwerrors.NoopLogger())
	require.NoError(t, err, "schema-missing must not fail the read path")
	assert.Greater(t, len(plan), len(base))
}
