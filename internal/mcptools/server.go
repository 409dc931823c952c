package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with all 4 analysis tools registered.
func NewMCPServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "luagraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_project",
		Description: "Analyze a Lua project: parse every file, build the structural graph and the knowledge graph, compute per-function complexity metrics, and load the result into the graph store.",
	}, svc.AnalyzeProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_functions",
		Description: "Search for functions by name substring match across the analyzed project.",
	}, svc.QueryFunctions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_call_chains",
		Description: "Traverse CALLS edges from a function, following callees or callers up to the specified depth.",
	}, svc.GetCallChains)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Return vertex, edge, and file counts of the stored graphs.",
	}, svc.GraphStats)

	return server
}

// RunMCPServer starts an HTTP server exposing the analysis MCP tools.
func RunMCPServer(ctx context.Context, svc *Service, addr string) error {
	server := NewMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
