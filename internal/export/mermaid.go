package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/luagraph/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram of the knowledge
// graph. Functions are grouped into one subgraph per module; CALLS and
// REQUIRES edges become arrows.
func GenerateMermaid(result *graph.ProjectResult) string {
	kg := result.KnowledgeGraph

	// Build vertex → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(vertexID string) string {
		if id, ok := nodeIDs[vertexID]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[vertexID] = id
		return id
	}

	// Group drawable vertices by file, modules first.
	var modules []graph.SemanticVertex
	members := make(map[string][]graph.SemanticVertex) // file → functions and requires
	for _, v := range kg.Vertices {
		switch v.Category {
		case graph.CategoryModule:
			modules = append(modules, v)
		case graph.CategoryFunction, graph.CategoryRequire:
			members[v.File] = append(members[v.File], v)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].File < modules[j].File })

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, mod := range modules {
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(mod.ID), mod.Name))
		for _, v := range members[mod.File] {
			label := v.Name
			if v.Category == graph.CategoryRequire {
				label = "require " + v.Name
			}
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(v.ID), label))
		}
		sb.WriteString("  end\n")
	}

	for _, e := range kg.Edges {
		if e.Relation != graph.RelationCalls && e.Relation != graph.RelationRequires {
			continue
		}
		// Skip edges whose endpoints were not drawn.
		if _, ok := nodeIDs[e.From]; !ok {
			continue
		}
		if _, ok := nodeIDs[e.To]; !ok {
			continue
		}
		arrow := "-->"
		if e.Relation == graph.RelationRequires {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", getID(e.From), arrow, getID(e.To)))
	}

	return sb.String()
}
