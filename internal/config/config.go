package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/luagraph/internal/ast"
	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/metrics"
)

// ProjectConfig holds project-level settings loaded from luagraph.yml.
// The classification tables are versioned configuration: changing them
// changes metric values and graph shape, so PolicyVersion should be bumped
// alongside any override.
type ProjectConfig struct {
	PolicyVersion string `yaml:"policyVersion,omitempty"`

	// Tree normalization.
	KeepKinds      []string `yaml:"keepKinds,omitempty"`
	DropKinds      []string `yaml:"dropKinds,omitempty"`
	KindDefault    string   `yaml:"kindDefault,omitempty"` // keep | drop
	ErrorTolerance *float64 `yaml:"errorTolerance,omitempty"`

	// Metric classification overrides. Empty slices fall back to the
	// built-in Lua tables.
	OperatorTokens []string `yaml:"operatorTokens,omitempty"`
	IgnoredTokens  []string `yaml:"ignoredTokens,omitempty"`
	StatementKinds []string `yaml:"statementKinds,omitempty"`
	DecisionKinds  []string `yaml:"decisionKinds,omitempty"`

	// Semantic derivation.
	Resolution    string   `yaml:"resolution,omitempty"` // lexical | member
	MustRecognize []string `yaml:"mustRecognize,omitempty"`

	// Execution. BuildTimeoutMS caps the wall-clock time of one whole
	// analysis run; files still unfinished at the deadline are reported as
	// timed out.
	Workers        int    `yaml:"workers,omitempty"`
	BuildTimeoutMS int    `yaml:"buildTimeoutMs,omitempty"`
	DBPath         string `yaml:"dbPath,omitempty"`
	Verbose        bool   `yaml:"verbose,omitempty"`
}

// Load attempts to read luagraph.yml or luagraph.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"luagraph.yml", "luagraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// KindPolicy converts the keep/drop lists and the fallback for unlisted
// kinds to a tree policy.
func (c *ProjectConfig) KindPolicy() ast.KindPolicy {
	if len(c.KeepKinds) == 0 && len(c.DropKinds) == 0 && c.KindDefault == "" {
		return ast.DefaultPolicy()
	}
	defaultKeep := c.KindDefault != "drop"
	drop := c.DropKinds
	if len(drop) == 0 && defaultKeep {
		// Keep-by-default with no explicit drops still sheds punctuation.
		drop = ast.DefaultDropKinds
	}
	return ast.NewKindPolicy(c.KeepKinds, drop, defaultKeep)
}

// Parser builds the tree parser with the configured error tolerance.
func (c *ProjectConfig) Parser() *ast.Parser {
	p := ast.NewParser()
	if c.ErrorTolerance != nil {
		p.ErrorTolerance = *c.ErrorTolerance
	}
	return p
}

// MetricsEngine builds the metrics engine, applying any classification
// overrides on top of the Lua defaults.
func (c *ProjectConfig) MetricsEngine() *metrics.Engine {
	e := metrics.NewEngine()
	if len(c.OperatorTokens) > 0 {
		e.Operators = toSet(c.OperatorTokens)
	}
	if len(c.IgnoredTokens) > 0 {
		e.Ignored = toSet(c.IgnoredTokens)
	}
	if len(c.StatementKinds) > 0 {
		e.StatementKinds = toSet(c.StatementKinds)
	}
	if len(c.DecisionKinds) > 0 {
		e.DecisionKinds = toSet(c.DecisionKinds)
	}
	return e
}

// SemanticOptions builds the derivation options.
func (c *ProjectConfig) SemanticOptions() graph.SemanticOptions {
	opts := graph.DefaultSemanticOptions()
	if c.Resolution == string(graph.ResolveMember) {
		opts.Resolution = graph.ResolveMember
	}
	if len(c.MustRecognize) > 0 {
		opts.MustRecognize = toSet(c.MustRecognize)
	}
	return opts
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
