package analyzer

import (
	"context"
	"errors"
	"io/fs"

	"github.com/dusk-indust/luagraph/internal/ast"
	"github.com/dusk-indust/luagraph/internal/graph"
)

// ErrUnsupported marks a file whose tree contained constructs the semantic
// rules were expected to recognize but did not. The file's graphs are still
// usable; the status records the gap.
var ErrUnsupported = errors.New("unsupported constructs")

// classifyFailure maps a per-file error to its status. Unknown errors fall
// back to io_error: they all originate from reading or decoding input.
func classifyFailure(err error) graph.FileStatus {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return graph.StatusTimeout
	case errors.Is(err, ast.ErrParse):
		return graph.StatusParseError
	case errors.Is(err, ErrUnsupported):
		return graph.StatusUnsupportedConstruct
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return graph.StatusIOError
	default:
		return graph.StatusIOError
	}
}
