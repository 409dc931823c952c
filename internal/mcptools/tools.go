package mcptools

import "github.com/dusk-indust/luagraph/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// AnalyzeProjectInput is the input for the analyze_project MCP tool.
type AnalyzeProjectInput struct {
	Path        string `json:"path" jsonschema:"absolute path to a directory of Lua sources or a .zip archive"`
	ProjectID   string `json:"projectId,omitempty" jsonschema:"project identifier for the result (default: the path)"`
	Incremental bool   `json:"incremental,omitempty" jsonschema:"reuse the previous result, re-analyzing only changed files"`
}

// AnalyzeProjectOutput is the result of the analyze_project MCP tool.
type AnalyzeProjectOutput struct {
	Result *graph.ProjectResult `json:"result"`
}

// QueryFunctionsInput is the input for the query_functions MCP tool.
type QueryFunctionsInput struct {
	Query string `json:"query" jsonschema:"search query for function names (substring match)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryFunctionsOutput is the result of the query_functions MCP tool.
type QueryFunctionsOutput struct {
	Functions []graph.SemanticVertex `json:"functions"`
	Total     int                    `json:"total"`
}

// GetCallChainsInput is the input for the get_call_chains MCP tool.
type GetCallChainsInput struct {
	VertexID  string `json:"vertexId" jsonschema:"knowledge-graph vertex id of the starting function"`
	Direction string `json:"direction,omitempty" jsonschema:"callees (what it calls) or callers (what calls it). Default: callees"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetCallChainsOutput is the result of the get_call_chains MCP tool.
type GetCallChainsOutput struct {
	Chains []graph.CallChain `json:"chains"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	Stats graph.GraphStats `json:"stats"`
}
