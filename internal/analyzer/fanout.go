package analyzer

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/luagraph/internal/ast"
	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/project"
)

// Pipeline runs the per-file stages in order: parse and normalize, build
// the structural graph, derive the knowledge graph.
type Pipeline struct {
	Parser     *ast.Parser
	Structural *graph.StructuralBuilder
	Semantic   *graph.SemanticBuilder
}

// NewPipeline wires the default stages.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Parser:     ast.NewParser(),
		Structural: graph.NewStructuralBuilder(),
		Semantic:   graph.NewSemanticBuilder(),
	}
}

// AnalyzeFile produces the FileResult for one source file. A failed stage
// yields a failed status; it never returns an error, so one bad file stays
// isolated from the rest of the batch.
func (p *Pipeline) AnalyzeFile(ctx context.Context, file project.File) graph.FileResult {
	if file.Err != nil {
		return failedResult(file.Path, graph.StatusIOError, file.Err.Error())
	}
	if err := ctx.Err(); err != nil {
		return failedResult(file.Path, graph.StatusTimeout, err.Error())
	}

	root, err := p.Parser.ParseFile(file.Path, file.Source)
	if err != nil {
		return failedResult(file.Path, classifyFailure(err), err.Error())
	}

	structuralVertices, structuralEdges := p.Structural.Build(root, file.Path)
	semanticVertices, semanticEdges, unsupported := p.Semantic.Derive(root, file.Path)

	result := graph.FileResult{
		FilePath:           file.Path,
		StructuralVertices: structuralVertices,
		StructuralEdges:    structuralEdges,
		SemanticVertices:   semanticVertices,
		SemanticEdges:      semanticEdges,
		Status:             graph.StatusOK,
	}

	// Unrecognized must-recognize constructs degrade the status but keep
	// the graphs that were built around them.
	if len(unsupported) > 0 {
		result.Status = graph.StatusUnsupportedConstruct
		result.ErrorMessage = strings.Join(unsupported, "; ")
	}

	// Work that outlived its deadline is discarded as a timeout.
	if err := ctx.Err(); err != nil {
		return failedResult(file.Path, graph.StatusTimeout, err.Error())
	}

	return result
}

func failedResult(path string, status graph.FileStatus, message string) graph.FileResult {
	return graph.FileResult{
		FilePath:     path,
		Status:       status,
		ErrorMessage: message,
	}
}

// FanOut analyzes files in parallel with a bounded worker pool. Unlike a
// fail-fast group, per-file failures are recorded in their FileResult and
// never cancel sibling files.
type FanOut struct {
	pipeline   *Pipeline
	workers    int
	onProgress func(ProgressEvent)
}

// NewFanOut creates a FanOut running at most workers files concurrently.
// onProgress is called synchronously from each goroutine; it may be nil.
func NewFanOut(pipeline *Pipeline, workers int, onProgress func(ProgressEvent)) *FanOut {
	if workers <= 0 {
		workers = 4
	}
	return &FanOut{
		pipeline:   pipeline,
		workers:    workers,
		onProgress: onProgress,
	}
}

// Run analyzes every file and returns one FileResult per input, in input
// order. Cancellation of ctx marks unfinished files as timed out; results
// already completed are kept.
func (f *FanOut) Run(ctx context.Context, files []project.File) []graph.FileResult {
	results := make([]graph.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, file := range files {
		f.emit(ProgressEvent{File: file.Path, Status: ProgressPending})

		g.Go(func() error {
			f.emit(ProgressEvent{File: file.Path, Status: ProgressWorking})

			result := f.pipeline.AnalyzeFile(gctx, file)
			results[i] = result

			if result.Failed() {
				f.emit(ProgressEvent{
					File:    file.Path,
					Status:  ProgressFailed,
					Message: result.ErrorMessage,
				})
			} else {
				f.emit(ProgressEvent{File: file.Path, Status: ProgressComplete})
			}
			return nil // isolation: a failed file never cancels its siblings
		})
	}

	g.Wait() // always nil; goroutines report through results
	return results
}

// emit sends a progress event if a callback is registered.
func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
