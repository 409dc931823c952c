package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ConsistencyError reports structural defects in a merged result: dangling
// edges or metadata that disagrees with the collections. It aborts the
// build rather than letting a corrupt graph reach consumers.
type ConsistencyError struct {
	Problems []string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent graph: %s", strings.Join(e.Problems, "; "))
}

// Validate checks referential integrity of both graphs and the metadata
// counts. Edges in each graph may only reference vertices of that graph.
func Validate(p *ProjectResult) error {
	var problems []string

	structural := make(map[string]bool, len(p.LuaGraph.Vertices))
	for _, v := range p.LuaGraph.Vertices {
		if structural[v.ID] {
			problems = append(problems, fmt.Sprintf("duplicate structural vertex %s", v.ID))
		}
		structural[v.ID] = true
	}
	for _, e := range p.LuaGraph.Edges {
		if !structural[e.From] {
			problems = append(problems, fmt.Sprintf("structural edge from missing vertex %s", e.From))
		}
		if !structural[e.To] {
			problems = append(problems, fmt.Sprintf("structural edge to missing vertex %s", e.To))
		}
	}

	semantic := make(map[string]bool, len(p.KnowledgeGraph.Vertices))
	for _, v := range p.KnowledgeGraph.Vertices {
		if semantic[v.ID] {
			problems = append(problems, fmt.Sprintf("duplicate knowledge vertex %s", v.ID))
		}
		semantic[v.ID] = true
	}
	for _, e := range p.KnowledgeGraph.Edges {
		if !semantic[e.From] {
			problems = append(problems, fmt.Sprintf("knowledge edge from missing vertex %s", e.From))
		}
		if !semantic[e.To] {
			problems = append(problems, fmt.Sprintf("knowledge edge to missing vertex %s", e.To))
		}
	}

	if p.Metadata.TotalNodes != len(p.LuaGraph.Vertices) ||
		p.Metadata.TotalEdges != len(p.LuaGraph.Edges) ||
		p.Metadata.TotalKnowledgeNodes != len(p.KnowledgeGraph.Vertices) ||
		p.Metadata.TotalKnowledgeEdges != len(p.KnowledgeGraph.Edges) {
		problems = append(problems, "metadata counts diverge from collections")
	}

	if len(problems) > 0 {
		return &ConsistencyError{Problems: problems}
	}
	return nil
}

// resultSchema is resolved once; ValidateShape reuses it across builds.
var resultSchema *jsonschema.Resolved

func init() {
	schema, err := jsonschema.For[ProjectResult](nil)
	if err != nil {
		panic(fmt.Sprintf("graph: derive result schema: %v", err))
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("graph: resolve result schema: %v", err))
	}
	resultSchema = resolved
}

// ValidateShape checks the serialized form of a result against the
// machine-derived JSON schema. Catches drift between the exported payload
// and the documented contract.
func ValidateShape(p *ProjectResult) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("round-trip result: %w", err)
	}
	if err := resultSchema.Validate(instance); err != nil {
		return fmt.Errorf("result shape: %w", err)
	}
	return nil
}
