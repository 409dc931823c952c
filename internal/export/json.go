// Package export renders analysis results for consumers: canonical JSON
// for tooling, Mermaid diagrams for humans.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dusk-indust/luagraph/internal/graph"
)

// Envelope wraps a result with export provenance.
type Envelope struct {
	ExportedAt string               `json:"exportedAt"`
	Result     *graph.ProjectResult `json:"result"`
}

// WriteJSON streams a result as indented JSON. The envelope records when
// the export happened; the result itself is embedded unchanged.
func WriteJSON(w io.Writer, result *graph.ProjectResult) error {
	env := Envelope{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Result:     result,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("export: encode result: %w", err)
	}
	return nil
}

// WriteJSONFile writes the export to path, creating parent directories.
func WriteJSONFile(path string, result *graph.ProjectResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, result)
}
