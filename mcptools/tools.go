package mcptools

import (
	"context"
	"strings"

	"github.com/aclgate/aclgate/label"
	"github.com/aclgate/aclgate/rewriter"
	"github.com/aclgate/aclgate/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type describeSchemaInput struct {
	Resource string `json:"resource" jsonschema:"Resource name to describe"`
}

type describeSchemaOutput struct {
	Resource      string   `json:"resource"`
	Known         bool     `json:"known"`
	LabelledPaths []string `json:"labelled_paths"`
}

func handleDescribeSchema(_ context.Context, _ *mcp.CallToolRequest, input describeSchemaInput) (*mcp.CallToolResult, describeSchemaOutput, error) {
	out := describeSchemaOutput{
		Resource:      input.Resource,
		Known:         deps.registry.Known(input.Resource),
		LabelledPaths: deps.registry.LabelledPaths(input.Resource),
	}
	return nil, out, nil
}

type principalInput struct {
	Cats []string `json:"cats" jsonschema:"Categories the simulated principal is cleared for"`
	Diss []string `json:"diss,omitempty" jsonschema:"Dissemination tokens the simulated principal is cleared for"`
}

type simulateDominanceInput struct {
	Resource  string         `json:"resource" jsonschema:"Resource name the document belongs to"`
	Principal principalInput `json:"principal" jsonschema:"The simulated principal's clearance"`
	Document  map[string]any `json:"document" jsonschema:"The document to evaluate, in the resource's normal wire shape"`
}

type pathResult struct {
	Path     string `json:"path"`
	Admitted bool   `json:"admitted"`
}

type simulateDominanceOutput struct {
	Resource     string       `json:"resource"`
	AdmittedRoot bool         `json:"admitted_root"`
	Paths        []pathResult `json:"paths"`
}

const simulationID = "simulate"

// handleSimulateDominance runs input.Document through the same
// rewriter.Rewrite pipeline shape the Read Path uses, against a
// throwaway in-memory executor seeded only with this one document. It
// never reads or writes the production store.
func handleSimulateDominance(ctx context.Context, _ *mcp.CallToolRequest, input simulateDominanceInput) (*mcp.CallToolResult, simulateDominanceOutput, error) {
	principal := label.NewPrincipal(input.Principal.Cats, input.Principal.Diss)

	doc := make(map[string]any, len(input.Document)+1)
	for k, v := range input.Document {
		doc[k] = v
	}
	doc["_id"] = simulationID

	exec := store.NewMemoryExecutor()
	exec.Seed(input.Resource, simulationID, doc)

	base := rewriter.Plan{{Kind: rewriter.Match, Body: map[string]any{"_id": simulationID}}}
	plan, err := rewriter.Rewrite(input.Resource, principal, base, deps.registry)
	if err != nil {
		return nil, simulateDominanceOutput{}, err
	}

	results, err := exec.Aggregate(ctx, input.Resource, plan)
	if err != nil {
		return nil, simulateDominanceOutput{}, err
	}

	out := simulateDominanceOutput{Resource: input.Resource, AdmittedRoot: len(results) > 0}
	labelledPaths := deps.registry.LabelledPaths(input.Resource)
	var surviving map[string]any
	if len(results) > 0 {
		surviving = results[0]
	}
	for _, p := range labelledPaths {
		out.Paths = append(out.Paths, pathResult{Path: p, Admitted: pathPresent(surviving, p)})
	}
	return nil, out, nil
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
