package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/luagraph/internal/analyzer"
	"github.com/dusk-indust/luagraph/internal/config"
	"github.com/dusk-indust/luagraph/internal/export"
	"github.com/dusk-indust/luagraph/internal/graph"
	"github.com/dusk-indust/luagraph/internal/mcptools"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectID   string
	Out         string
	DBPath      string
	Incremental bool
	Diagram     bool
	Verbose     bool
	ServeMCP    bool
	Addr        string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("luagraph", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectID, "project-id", "", "project identifier for the result (default: the path)")
	fs.StringVar(&flags.Out, "out", "", "write the JSON result to this file instead of stdout")
	fs.StringVar(&flags.DBPath, "db", "", "persist the graphs to a graph database at this path")
	fs.BoolVar(&flags.Incremental, "incremental", false, "re-analyze only files changed since the previous run")
	fs.BoolVar(&flags.Diagram, "diagram", false, "print a Mermaid diagram of the knowledge graph")
	fs.BoolVar(&flags.Verbose, "verbose", false, "print per-file progress")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server instead of a one-shot analysis")
	fs.StringVar(&flags.Addr, "addr", ":8391", "listen address for -serve-mcp")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.ServeMCP {
		return serveMCP(ctx, flags)
	}

	path := fs.Arg(0)
	if path == "" {
		return fmt.Errorf("usage: luagraph [flags] <path to Lua project or .zip>")
	}
	return analyze(ctx, flags, path)
}

// analyze runs a one-shot analysis and renders the requested outputs.
func analyze(ctx context.Context, flags cliFlags, path string) error {
	a, err := buildAnalyzer(path, flags.Verbose)
	if err != nil {
		return err
	}

	result, err := a.AnalyzeProject(ctx, analyzer.Request{
		ProjectID:   flags.ProjectID,
		Path:        path,
		Incremental: flags.Incremental,
	})
	if err != nil {
		return err
	}

	if flags.DBPath != "" {
		if err := persist(ctx, flags.DBPath, result); err != nil {
			return err
		}
	}

	if flags.Diagram {
		fmt.Print(export.GenerateMermaid(result))
		return nil
	}

	if flags.Out != "" {
		return export.WriteJSONFile(flags.Out, result)
	}
	return export.WriteJSON(os.Stdout, result)
}

// serveMCP exposes the analysis tools over MCP until the context ends.
func serveMCP(ctx context.Context, flags cliFlags) error {
	a, err := buildAnalyzer(".", flags.Verbose)
	if err != nil {
		return err
	}

	store, err := openStore(flags.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := mcptools.NewService(a, store)
	fmt.Fprintf(os.Stderr, "luagraph MCP server listening on %s\n", flags.Addr)
	return mcptools.RunMCPServer(ctx, svc, flags.Addr)
}

// buildAnalyzer loads project configuration from dir and wires the
// pipeline, attaching a progress printer when verbose.
func buildAnalyzer(dir string, verbose bool) (*analyzer.Analyzer, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var opts []analyzer.Option
	if verbose || cfg.Verbose {
		// Printing goes through a buffered reporter so slow terminals never
		// stall the worker pool.
		reporter := analyzer.NewProgressReporter()
		go func() {
			for ev := range reporter.Subscribe() {
				if ev.Status != analyzer.ProgressPending {
					fmt.Fprintln(os.Stderr, analyzer.FormatProgress(ev))
				}
			}
		}()
		opts = append(opts, analyzer.WithProgress(reporter.Emit))
	}

	return analyzer.New(cfg, opts...), nil
}

// persist loads the merged result into a store at dbPath.
func persist(ctx context.Context, dbPath string, result *graph.ProjectResult) error {
	store, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if err := graph.Load(ctx, store, result); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	return nil
}
