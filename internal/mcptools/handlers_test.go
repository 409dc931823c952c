package mcptools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/luagraph/internal/analyzer"
	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/status"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(analyzer.New(nil), graph.NewMemStore())
}

func analyzeFixture(t *testing.T, s *Service) *graph.ProjectResult {
	t.Helper()
	_, out, err := s.AnalyzeProject(context.Background(), nil, AnalyzeProjectInput{
		Path:      filepath.Join("..", "..", "testdata", "fixtures", "lua_project"),
		ProjectID: "demo",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	return out.Result
}

func TestAnalyzeProjectTool(t *testing.T) {
	s := newTestService(t)
	result := analyzeFixture(t, s)

	assert.Equal(t, status.Completed, result.Status)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.NotEmpty(t, result.KnowledgeGraph.Vertices)
}

func TestAnalyzeProjectTool_PathRequired(t *testing.T) {
	s := newTestService(t)
	_, _, err := s.AnalyzeProject(context.Background(), nil, AnalyzeProjectInput{})
	require.Error(t, err)
}

func TestQueryFunctionsTool(t *testing.T) {
	s := newTestService(t)
	analyzeFixture(t, s)

	_, out, err := s.QueryFunctions(context.Background(), nil, QueryFunctionsInput{Query: "clamp"})
	require.NoError(t, err)

	require.Equal(t, 1, out.Total)
	assert.Equal(t, "M.clamp", out.Functions[0].Name)
	assert.Equal(t, graph.CategoryFunction, out.Functions[0].Category)
}

func TestGetCallChainsTool(t *testing.T) {
	s := newTestService(t)
	result := analyzeFixture(t, s)

	var mainID, greetID string
	for _, v := range result.KnowledgeGraph.Vertices {
		if v.Category != graph.CategoryFunction {
			continue
		}
		switch v.Name {
		case "main":
			mainID = v.ID
		case "greet":
			greetID = v.ID
		}
	}
	require.NotEmpty(t, mainID)
	require.NotEmpty(t, greetID)

	_, out, err := s.GetCallChains(context.Background(), nil, GetCallChainsInput{VertexID: mainID})
	require.NoError(t, err)
	require.NotEmpty(t, out.Chains)

	found := false
	for _, chain := range out.Chains {
		for _, node := range chain.Nodes {
			if node == greetID {
				found = true
			}
		}
	}
	assert.True(t, found, "main calls greet, so greet appears in its callee chains")
}

func TestGetCallChainsTool_VertexRequired(t *testing.T) {
	s := newTestService(t)
	_, _, err := s.GetCallChains(context.Background(), nil, GetCallChainsInput{})
	require.Error(t, err)
}

func TestGraphStatsTool(t *testing.T) {
	s := newTestService(t)
	result := analyzeFixture(t, s)

	_, out, err := s.GraphStats(context.Background(), nil, GraphStatsInput{})
	require.NoError(t, err)

	assert.Equal(t, result.Metadata.TotalNodes, out.Stats.StructuralVertices)
	assert.Equal(t, result.Metadata.TotalKnowledgeNodes, out.Stats.SemanticVertices)
	assert.Equal(t, 2, out.Stats.Files)
}
