// Package analyzer runs the whole pipeline: load sources, analyze files in
// parallel, merge per-file graphs into a validated project result.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/dusk-indust/luagraph/internal/config"
	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/project"
)

// Request describes one analysis run.
type Request struct {
	// ProjectID names the project in the result. Defaults to the path.
	ProjectID string

	// Path is a directory of Lua sources, or a .zip archive of them.
	Path string

	// Incremental reuses the previous result for this project, re-analyzing
	// only files whose content hash changed.
	Incremental bool
}

// Analyzer owns the pipeline and the per-project incremental state.
type Analyzer struct {
	cfg        *config.ProjectConfig
	pipeline   *Pipeline
	workers    int
	timeout    time.Duration
	onProgress func(ProgressEvent)

	mu       sync.Mutex
	previous map[string]*analysisState
}

// analysisState is what incremental runs compare against: the last merged
// result plus the content hash of every file it covered.
type analysisState struct {
	result *graph.ProjectResult
	hashes map[string]uint64
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithProgress registers a progress callback.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(a *Analyzer) { a.onProgress = fn }
}

// New builds an Analyzer from project configuration. A nil cfg uses the
// defaults.
func New(cfg *config.ProjectConfig, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}

	pipeline := NewPipeline()
	pipeline.Parser = cfg.Parser()
	pipeline.Structural.Policy = cfg.KindPolicy()
	pipeline.Semantic.Engine = cfg.MetricsEngine()
	pipeline.Semantic.Options = cfg.SemanticOptions()

	a := &Analyzer{
		cfg:      cfg,
		pipeline: pipeline,
		workers:  cfg.Workers,
		previous: make(map[string]*analysisState),
	}
	if cfg.BuildTimeoutMS > 0 {
		a.timeout = time.Duration(cfg.BuildTimeoutMS) * time.Millisecond
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeProject loads the request's sources and produces a merged,
// validated result. Per-file failures degrade the status; only a load
// failure or an inconsistent merged graph is returned as an error.
func (a *Analyzer) AnalyzeProject(ctx context.Context, req Request) (*graph.ProjectResult, error) {
	projectID := req.ProjectID
	if projectID == "" {
		projectID = req.Path
	}

	files, err := loadFiles(req.Path)
	if err != nil {
		return nil, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	hashes := hashFiles(files)

	var prev *analysisState
	if req.Incremental {
		a.mu.Lock()
		prev = a.previous[projectID]
		a.mu.Unlock()
	}

	var result *graph.ProjectResult
	if prev == nil {
		results := a.runBatch(ctx, files)
		result, err = Merge(projectID, results)
	} else {
		changed, removed := diffFiles(prev.hashes, files, hashes)
		results := a.runBatch(ctx, changed)
		result, err = MergeIncremental(prev.result, results, removed)
	}
	if err != nil {
		return nil, err
	}

	if err := graph.ValidateShape(result); err != nil {
		return nil, err
	}

	if result.FilesFailed > 0 {
		log.Printf("WARNING: %s: %d of %d files failed", projectID, result.FilesFailed, result.FilesProcessed)
	}

	// Failed files keep their previous hash absent so the next incremental
	// run retries them.
	for _, fe := range result.Errors {
		delete(hashes, fe.FilePath)
	}
	a.mu.Lock()
	a.previous[projectID] = &analysisState{result: result, hashes: hashes}
	a.mu.Unlock()

	return result, nil
}

// runBatch fans the files out over the worker pool.
func (a *Analyzer) runBatch(ctx context.Context, files []project.File) []graph.FileResult {
	fanout := NewFanOut(a.pipeline, a.workers, a.onProgress)
	return fanout.Run(ctx, files)
}

// loadFiles reads sources from a directory or a zip archive.
func loadFiles(path string) ([]project.File, error) {
	if strings.HasSuffix(path, ".zip") {
		return project.LoadZip(path)
	}
	return project.LoadDir(path)
}

// hashFiles computes a content hash per readable file.
func hashFiles(files []project.File) map[string]uint64 {
	hashes := make(map[string]uint64, len(files))
	for _, f := range files {
		if f.Err == nil {
			hashes[f.Path] = xxhash.Sum64(f.Source)
		}
	}
	return hashes
}

// diffFiles splits the current file set against the previous hashes into
// files needing re-analysis and files that disappeared.
func diffFiles(prev map[string]uint64, files []project.File, current map[string]uint64) (changed []project.File, removed []string) {
	for _, f := range files {
		h, ok := current[f.Path]
		if f.Err != nil || !ok || prev[f.Path] != h {
			changed = append(changed, f)
		}
	}
	for path := range prev {
		if _, ok := current[path]; !ok {
			removed = append(removed, path)
		}
	}
	return changed, removed
}

// String implements fmt.Stringer for log lines.
func (r Request) String() string {
	mode := "full"
	if r.Incremental {
		mode = "incremental"
	}
	return fmt.Sprintf("%s (%s)", r.Path, mode)
}
