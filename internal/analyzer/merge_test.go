package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/status"
)

func fileResult(file string) graph.FileResult {
	return graph.FileResult{
		FilePath: file,
		Status:   graph.StatusOK,
		StructuralVertices: []graph.StructuralVertex{
			{ID: file + ":s0:chunk", Kind: "chunk", File: file},
			{ID: file + ":s1:identifier", Kind: "identifier", File: file},
		},
		StructuralEdges: []graph.StructuralEdge{
			{From: file + ":s0:chunk", To: file + ":s1:identifier", Relation: graph.RelationChild, File: file},
		},
		SemanticVertices: []graph.SemanticVertex{
			{ID: file + ":k0:Module", Category: graph.CategoryModule, Name: file, File: file},
		},
	}
}

func TestMerge_CountsAndStatus(t *testing.T) {
	result, err := Merge("demo", []graph.FileResult{fileResult("a.lua"), fileResult("b.lua")})
	require.NoError(t, err)

	assert.Equal(t, "demo", result.ProjectID)
	assert.Equal(t, status.Completed, result.Status)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 4, result.Metadata.TotalNodes)
	assert.Equal(t, 2, result.Metadata.TotalEdges)
	assert.Equal(t, 2, result.Metadata.TotalKnowledgeNodes)
	assert.Zero(t, result.Metadata.TotalKnowledgeEdges)
}

func TestMerge_PartialFailureKeepsCompletedWork(t *testing.T) {
	results := []graph.FileResult{
		fileResult("a.lua"),
		{FilePath: "bad.lua", Status: graph.StatusParseError, ErrorMessage: "unrecoverable parse errors"},
	}

	result, err := Merge("demo", results)
	require.NoError(t, err)

	assert.Equal(t, status.CompletedWithErrors, result.Status)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bad.lua", result.Errors[0].FilePath)
	assert.Equal(t, 2, result.Metadata.TotalNodes, "only a.lua contributes entities")
}

func TestMerge_InconsistentGraphFatal(t *testing.T) {
	broken := fileResult("a.lua")
	broken.StructuralEdges = append(broken.StructuralEdges, graph.StructuralEdge{
		From: "a.lua:s0:chunk", To: "a.lua:s9:missing", Relation: graph.RelationChild, File: "a.lua",
	})

	_, err := Merge("demo", []graph.FileResult{broken})
	require.Error(t, err)

	var cerr *graph.ConsistencyError
	assert.ErrorAs(t, err, &cerr)
}

func TestMergeIncremental_ReplacesStaleEntities(t *testing.T) {
	prev, err := Merge("demo", []graph.FileResult{fileResult("a.lua"), fileResult("b.lua")})
	require.NoError(t, err)

	// Re-analyze a.lua; its new tree has a single vertex.
	updated := graph.FileResult{
		FilePath: "a.lua",
		Status:   graph.StatusOK,
		StructuralVertices: []graph.StructuralVertex{
			{ID: "a.lua:s0:chunk", Kind: "chunk", File: "a.lua"},
		},
		SemanticVertices: []graph.SemanticVertex{
			{ID: "a.lua:k0:Module", Category: graph.CategoryModule, Name: "a.lua", File: "a.lua"},
		},
	}

	result, err := MergeIncremental(prev, []graph.FileResult{updated}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Metadata.TotalNodes, "b.lua keeps 2, a.lua now has 1")
	assert.Equal(t, 1, result.FilesProcessed, "counters reflect only the new batch")

	for _, e := range result.LuaGraph.Edges {
		assert.Equal(t, "b.lua", e.File, "a.lua's old edges are gone")
	}
}

func TestMergeIncremental_RemovedFiles(t *testing.T) {
	prev, err := Merge("demo", []graph.FileResult{fileResult("a.lua"), fileResult("b.lua")})
	require.NoError(t, err)

	result, err := MergeIncremental(prev, nil, []string{"b.lua"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Metadata.TotalNodes)
	for _, v := range result.LuaGraph.Vertices {
		assert.Equal(t, "a.lua", v.File)
	}
	assert.Equal(t, status.Completed, result.Status)
	assert.Zero(t, result.FilesProcessed)
}

func TestMerge_MetadataAlwaysRecomputed(t *testing.T) {
	result, err := Merge("demo", []graph.FileResult{fileResult("a.lua")})
	require.NoError(t, err)

	// Tamper, then merge incrementally: the counts must come back true.
	result.Metadata.TotalNodes = 99
	next, err := MergeIncremental(result, []graph.FileResult{fileResult("b.lua")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, next.Metadata.TotalNodes)
}
