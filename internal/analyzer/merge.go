package analyzer

import (
	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/status"
)

// Merge combines per-file results into one validated ProjectResult.
// Failed files contribute their error entry; files with unsupported
// constructs still contribute the graphs built around them.
func Merge(projectID string, results []graph.FileResult) (*graph.ProjectResult, error) {
	out := &graph.ProjectResult{ProjectID: projectID}
	appendResults(out, results)
	return finalize(out, results)
}

// MergeIncremental folds a new batch into a previous result. Entities of
// re-analyzed and removed files are stripped first, keyed by their file
// attribution, then the new batch is appended. Counters and errors reflect
// only the new batch.
func MergeIncremental(prev *graph.ProjectResult, results []graph.FileResult, removed []string) (*graph.ProjectResult, error) {
	stale := make(map[string]bool, len(results)+len(removed))
	for _, r := range results {
		stale[r.FilePath] = true
	}
	for _, f := range removed {
		stale[f] = true
	}

	out := &graph.ProjectResult{ProjectID: prev.ProjectID}
	out.LuaGraph.Vertices = keepStructuralVertices(prev.LuaGraph.Vertices, stale)
	out.LuaGraph.Edges = keepStructuralEdges(prev.LuaGraph.Edges, stale)
	out.KnowledgeGraph.Vertices = keepSemanticVertices(prev.KnowledgeGraph.Vertices, stale)
	out.KnowledgeGraph.Edges = keepSemanticEdges(prev.KnowledgeGraph.Edges, stale)

	appendResults(out, results)
	return finalize(out, results)
}

// appendResults concatenates the graph entities of each result.
func appendResults(out *graph.ProjectResult, results []graph.FileResult) {
	for _, r := range results {
		out.LuaGraph.Vertices = append(out.LuaGraph.Vertices, r.StructuralVertices...)
		out.LuaGraph.Edges = append(out.LuaGraph.Edges, r.StructuralEdges...)
		out.KnowledgeGraph.Vertices = append(out.KnowledgeGraph.Vertices, r.SemanticVertices...)
		out.KnowledgeGraph.Edges = append(out.KnowledgeGraph.Edges, r.SemanticEdges...)
	}
}

// finalize recounts metadata, folds in the batch summary, and validates.
// Metadata is always recomputed from the merged collections, never carried
// over from a previous result.
func finalize(out *graph.ProjectResult, results []graph.FileResult) (*graph.ProjectResult, error) {
	out.Recount()

	s := status.Summarize(results)
	out.Status = s.Status
	out.FilesProcessed = s.FilesProcessed
	out.FilesFailed = s.FilesFailed
	out.Errors = s.Errors
	out.Message = s.Message

	if err := graph.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func keepStructuralVertices(in []graph.StructuralVertex, stale map[string]bool) []graph.StructuralVertex {
	var out []graph.StructuralVertex
	for _, v := range in {
		if !stale[v.File] {
			out = append(out, v)
		}
	}
	return out
}

func keepStructuralEdges(in []graph.StructuralEdge, stale map[string]bool) []graph.StructuralEdge {
	var out []graph.StructuralEdge
	for _, e := range in {
		if !stale[e.File] {
			out = append(out, e)
		}
	}
	return out
}

func keepSemanticVertices(in []graph.SemanticVertex, stale map[string]bool) []graph.SemanticVertex {
	var out []graph.SemanticVertex
	for _, v := range in {
		if !stale[v.File] {
			out = append(out, v)
		}
	}
	return out
}

func keepSemanticEdges(in []graph.SemanticEdge, stale map[string]bool) []graph.SemanticEdge {
	var out []graph.SemanticEdge
	for _, e := range in {
		if !stale[e.File] {
			out = append(out, e)
		}
	}
	return out
}
