package mcptools

import (
	"context"

	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/schema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `aclgate MCP server — read-only operator/audit tools over the schema registry and label algebra. Never touches the production document database or blob store.`

// deps holds the collaborators the tool handlers close over. Package
// state rather than a receiver because mcp.AddTool's handler signature
// takes no extra argument beyond (ctx, request, input).
var deps struct {
	registry *schema.Registry
	log      gwerrors.Logger
}

// NewServer builds the MCP server and registers describe_schema and
// simulate_dominance against reg.
func NewServer(reg *schema.Registry, log gwerrors.Logger) *mcp.Server {
	if log == nil {
		log = gwerrors.NoopLogger()
	}
	deps.registry = reg
	deps.log = log

	server := mcp.NewServer(
		&mcp.Implementation{Name: "aclgate", Version: "dev"},
		&mcp.ServerOptions{Instructions: serverInstructions},
	)
	registerTools(server)
	return server
}

// Run starts the MCP server over stdio and blocks until the client
// disconnects or ctx is cancelled.
func Run(ctx context.Context, reg *schema.Registry, log gwerrors.Logger) error {
	server := NewServer(reg, log)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_schema",
		Description: "Report the ordered labelled-path list for a resource: the document root plus every nested path whose schema node carries a _sec label marker.",
	}, handleDescribeSchema)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "simulate_dominance",
		Description: "Run a document through the same rewriter pipeline shape the Read Path uses, against an ephemeral in-memory evaluator, and report per labelled path whether the given principal would see it or have it redacted. Never touches the real store.",
	}, handleSimulateDominance)
}
