package graph

import (
	"github.com/dusk-indust/luagraph/internal/ast"
	"github.com/dusk-indust/luagraph/internal/metrics"
)

// --- Enums ---

// Relation classifies edges in both graphs.
type Relation string

const (
	// RelationChild is the only structural relation: parent to child in
	// source order.
	RelationChild Relation = "CHILD"

	// Knowledge-graph relations.
	RelationContains   Relation = "CONTAINS"
	RelationCalls      Relation = "CALLS"
	RelationDefines    Relation = "DEFINES"
	RelationReferences Relation = "REFERENCES"
	RelationRequires   Relation = "REQUIRES"
)

// Category classifies knowledge-graph vertices.
type Category string

const (
	CategoryModule   Category = "Module"
	CategoryFunction Category = "Function"
	CategoryVariable Category = "Variable"
	CategoryCall     Category = "Call"
	CategoryTable    Category = "Table"
	CategoryRequire  Category = "Require"
)

// FileStatus is the per-file processing outcome.
type FileStatus string

const (
	StatusOK                   FileStatus = "ok"
	StatusParseError           FileStatus = "parse_error"
	StatusUnsupportedConstruct FileStatus = "unsupported_construct"
	StatusIOError              FileStatus = "io_error"
	StatusTimeout              FileStatus = "timeout"
)

// --- Models ---

// StructuralVertex mirrors one kept syntax-tree node. IDs are globally
// unique within a project build and reproducible: a pure function of
// (file, kind, preorder position).
type StructuralVertex struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	File  string    `json:"file"`
	Range ast.Range `json:"range"`
}

// StructuralEdge connects a kept node to its nearest kept descendant.
// Ordinal preserves source order among the parent's kept children. The
// per-file edge set always forms a forest.
type StructuralEdge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation Relation `json:"relation"`
	Ordinal  int      `json:"ordinal"`
	File     string   `json:"file"`
}

// SemanticVertex is a recognized higher-level construct. Metrics is set
// only for CategoryFunction.
type SemanticVertex struct {
	ID       string           `json:"id"`
	Category Category         `json:"category"`
	Name     string           `json:"name"`
	File     string           `json:"file"`
	Range    ast.Range        `json:"range"`
	Metrics  *metrics.Metrics `json:"metrics,omitempty"`
}

// SemanticEdge is a directed knowledge-graph edge. The knowledge graph is
// a multigraph: the same (from, to, relation) triple may repeat, one edge
// per site.
type SemanticEdge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation Relation `json:"relation"`
	File     string   `json:"file"`
}

// FileResult is the outcome of analyzing one file. Vertex and edge slices
// are empty when Status is StatusParseError, StatusIOError, or
// StatusTimeout; StatusUnsupportedConstruct still carries the graphs built
// around the unrecognized construct.
type FileResult struct {
	FilePath           string             `json:"file_path"`
	StructuralVertices []StructuralVertex `json:"structural_vertices"`
	StructuralEdges    []StructuralEdge   `json:"structural_edges"`
	SemanticVertices   []SemanticVertex   `json:"semantic_vertices"`
	SemanticEdges      []SemanticEdge     `json:"semantic_edges"`
	Status             FileStatus         `json:"status"`
	ErrorMessage       string             `json:"error_message,omitempty"`
}

// Failed reports whether the file contributes to files_failed.
func (r FileResult) Failed() bool {
	return r.Status != StatusOK
}

// LuaGraph is the merged structural graph of a project.
type LuaGraph struct {
	Vertices []StructuralVertex `json:"vertices"`
	Edges    []StructuralEdge   `json:"edges"`
}

// KnowledgeGraph is the merged semantic graph of a project.
type KnowledgeGraph struct {
	Vertices []SemanticVertex `json:"vertices"`
	Edges    []SemanticEdge   `json:"edges"`
}

// Metadata carries the literal cardinalities of the merged collections.
// The aggregator recomputes it on every build; it is never carried over.
type Metadata struct {
	TotalNodes          int `json:"total_nodes"`
	TotalEdges          int `json:"total_edges"`
	TotalKnowledgeNodes int `json:"total_knowledge_nodes"`
	TotalKnowledgeEdges int `json:"total_knowledge_edges"`
}

// FileError names one failed file in a project build.
type FileError struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

// ProjectResult is the merged, validated output of one build request.
// Counters and Errors reflect only the files included in the request,
// never historical totals.
type ProjectResult struct {
	ProjectID      string         `json:"project_id"`
	LuaGraph       LuaGraph       `json:"lua_graph"`
	KnowledgeGraph KnowledgeGraph `json:"knowledge_graph"`
	Metadata       Metadata       `json:"metadata"`
	Status         string         `json:"status"`
	FilesProcessed int            `json:"files_processed"`
	FilesFailed    int            `json:"files_failed"`
	Errors         []FileError    `json:"errors"`
	Message        string         `json:"message,omitempty"`
}

// Recount refreshes Metadata from the literal collection lengths.
func (p *ProjectResult) Recount() {
	p.Metadata = Metadata{
		TotalNodes:          len(p.LuaGraph.Vertices),
		TotalEdges:          len(p.LuaGraph.Edges),
		TotalKnowledgeNodes: len(p.KnowledgeGraph.Vertices),
		TotalKnowledgeEdges: len(p.KnowledgeGraph.Edges),
	}
}
