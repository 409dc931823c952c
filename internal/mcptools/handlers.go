package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/luagraph/internal/analyzer"
	"github.com/dusk-indust/luagraph/internal/graph"
)

// Service holds the analyzer and graph store used by MCP tool handlers.
type Service struct {
	analyzer *analyzer.Analyzer
	store    graph.Store
}

// NewService creates a Service with the given analyzer and store.
func NewService(a *analyzer.Analyzer, store graph.Store) *Service {
	return &Service{analyzer: a, store: store}
}

// AnalyzeProject runs the pipeline over a project and loads the merged
// graphs into the store for the query tools.
func (s *Service) AnalyzeProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeProjectInput,
) (*mcp.CallToolResult, AnalyzeProjectOutput, error) {
	if input.Path == "" {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("path is required")
	}

	result, err := s.analyzer.AnalyzeProject(ctx, analyzer.Request{
		ProjectID:   input.ProjectID,
		Path:        input.Path,
		Incremental: input.Incremental,
	})
	if err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("analyze project: %w", err)
	}

	if err := s.store.InitSchema(ctx); err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("init schema: %w", err)
	}
	if err := graph.Load(ctx, s.store, result); err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("load graph: %w", err)
	}

	return nil, AnalyzeProjectOutput{Result: result}, nil
}

// QueryFunctions searches Function vertices by name substring match.
func (s *Service) QueryFunctions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryFunctionsInput,
) (*mcp.CallToolResult, QueryFunctionsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	functions, err := s.store.QueryFunctions(ctx, input.Query, limit)
	if err != nil {
		return nil, QueryFunctionsOutput{}, fmt.Errorf("query functions: %w", err)
	}

	return nil, QueryFunctionsOutput{
		Functions: functions,
		Total:     len(functions),
	}, nil
}

// GetCallChains traverses CALLS edges from a starting vertex.
func (s *Service) GetCallChains(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCallChainsInput,
) (*mcp.CallToolResult, GetCallChainsOutput, error) {
	if input.VertexID == "" {
		return nil, GetCallChainsOutput{}, fmt.Errorf("vertexId is required")
	}

	direction := graph.DirectionCallees
	if strings.EqualFold(input.Direction, string(graph.DirectionCallers)) {
		direction = graph.DirectionCallers
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := s.store.CallChains(ctx, input.VertexID, direction, maxDepth)
	if err != nil {
		return nil, GetCallChainsOutput{}, fmt.Errorf("get call chains: %w", err)
	}

	return nil, GetCallChainsOutput{Chains: chains}, nil
}

// GraphStats returns cardinalities of the stored graphs.
func (s *Service) GraphStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, GraphStatsOutput{}, fmt.Errorf("stats: %w", err)
	}

	return nil, GraphStatsOutput{Stats: *stats}, nil
}
