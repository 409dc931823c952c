// Package status reduces per-file outcomes to the overall result status.
package status

import (
	"fmt"

	"github.com/dusk-indust/luagraph/internal/graph"
)

// Overall build statuses.
const (
	Completed           = "completed"
	CompletedWithErrors = "completed_with_errors"
	Failed              = "failed"
)

// Summary is the aggregate view of one batch of file results.
type Summary struct {
	Status         string
	FilesProcessed int
	FilesFailed    int
	Errors         []graph.FileError
	Message        string
}

// Summarize folds file results into a Summary. Counters reflect only the
// given batch: an incremental request over three files reports three files,
// not the project's history.
func Summarize(results []graph.FileResult) Summary {
	s := Summary{FilesProcessed: len(results)}

	for _, r := range results {
		if !r.Failed() {
			continue
		}
		s.FilesFailed++
		s.Errors = append(s.Errors, graph.FileError{
			FilePath: r.FilePath,
			Message:  fmt.Sprintf("%s: %s", r.Status, r.ErrorMessage),
		})
	}

	switch {
	case s.FilesProcessed == 0:
		s.Status = Completed
		s.Message = "no files to analyze"
	case s.FilesFailed == 0:
		s.Status = Completed
	case s.FilesFailed == s.FilesProcessed:
		s.Status = Failed
		s.Message = fmt.Sprintf("all %d files failed", s.FilesFailed)
	default:
		s.Status = CompletedWithErrors
		s.Message = fmt.Sprintf("%d of %d files failed", s.FilesFailed, s.FilesProcessed)
	}
	return s
}
