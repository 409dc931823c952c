package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/luagraph/internal/config"
	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/status"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func TestAnalyzeProject_Fixture(t *testing.T) {
	a := New(nil)

	result, err := a.AnalyzeProject(context.Background(), Request{
		ProjectID: "demo",
		Path:      fixture(t, "lua_project"),
	})
	require.NoError(t, err)

	assert.Equal(t, "demo", result.ProjectID)
	assert.Equal(t, status.Completed, result.Status)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Zero(t, result.FilesFailed)

	assert.Equal(t, len(result.LuaGraph.Vertices), result.Metadata.TotalNodes)
	assert.Equal(t, len(result.KnowledgeGraph.Edges), result.Metadata.TotalKnowledgeEdges)

	names := make(map[string]graph.Category)
	for _, v := range result.KnowledgeGraph.Vertices {
		if v.Category == graph.CategoryFunction || v.Category == graph.CategoryRequire {
			names[v.Name] = v.Category
		}
	}
	assert.Equal(t, graph.CategoryFunction, names["greet"])
	assert.Equal(t, graph.CategoryFunction, names["main"])
	assert.Equal(t, graph.CategoryFunction, names["M.clamp"])
	assert.Equal(t, graph.CategoryFunction, names["M.add"])
	assert.Equal(t, graph.CategoryRequire, names["util"])
}

func TestAnalyzeProject_Deterministic(t *testing.T) {
	req := Request{ProjectID: "demo", Path: fixture(t, "lua_project")}

	r1, err := New(nil).AnalyzeProject(context.Background(), req)
	require.NoError(t, err)
	r2, err := New(nil).AnalyzeProject(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, r1, r2, "identical input yields an identical result")
}

func TestAnalyzeProject_PartialFailure(t *testing.T) {
	tolerance := 0.0
	a := New(&config.ProjectConfig{ErrorTolerance: &tolerance})

	result, err := a.AnalyzeProject(context.Background(), Request{
		Path: fixture(t, "broken_project"),
	})
	require.NoError(t, err)

	assert.Equal(t, status.CompletedWithErrors, result.Status)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "broken.lua", result.Errors[0].FilePath)

	for _, v := range result.LuaGraph.Vertices {
		assert.Equal(t, "ok.lua", v.File, "failed files contribute no entities")
	}
}

func TestAnalyzeProject_IncrementalUnchanged(t *testing.T) {
	a := New(nil)
	req := Request{ProjectID: "demo", Path: fixture(t, "lua_project")}

	first, err := a.AnalyzeProject(context.Background(), req)
	require.NoError(t, err)

	req.Incremental = true
	second, err := a.AnalyzeProject(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Metadata, second.Metadata, "unchanged files keep their entities")
	assert.Zero(t, second.FilesProcessed, "nothing needed re-analysis")
	assert.Equal(t, status.Completed, second.Status)
}

func TestAnalyzeProject_IncrementalChange(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("a.lua", "local function one()\n    return 1\nend\nreturn one()\n")
	write("b.lua", "return 2\n")

	a := New(nil)
	req := Request{ProjectID: "demo", Path: dir}

	first, err := a.AnalyzeProject(context.Background(), req)
	require.NoError(t, err)

	write("a.lua", "local function one()\n    return 1\nend\nlocal function two()\n    return 2\nend\nreturn two()\n")
	req.Incremental = true

	second, err := a.AnalyzeProject(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, second.FilesProcessed, "only the changed file is re-analyzed")
	assert.Greater(t, second.Metadata.TotalKnowledgeNodes, first.Metadata.TotalKnowledgeNodes)

	functions := 0
	for _, v := range second.KnowledgeGraph.Vertices {
		if v.Category == graph.CategoryFunction && v.File == "a.lua" {
			functions++
		}
	}
	assert.Equal(t, 2, functions, "a.lua's entities were replaced, not appended")
}

func TestAnalyzeProject_IncrementalRemovedFile(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.lua")
	require.NoError(t, os.WriteFile(aPath, []byte("return 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte("return 2\n"), 0o644))

	a := New(nil)
	req := Request{ProjectID: "demo", Path: dir}

	_, err := a.AnalyzeProject(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, os.Remove(aPath))
	req.Incremental = true

	result, err := a.AnalyzeProject(context.Background(), req)
	require.NoError(t, err)

	for _, v := range result.KnowledgeGraph.Vertices {
		assert.Equal(t, "b.lua", v.File, "entities of deleted files are stripped")
	}
}

func TestAnalyzeProject_MissingPath(t *testing.T) {
	a := New(nil)
	_, err := a.AnalyzeProject(context.Background(), Request{Path: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}
