package anonymize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dataveil/dataveil/internal/dataset"
)

// Job describes one end-to-end anonymization run: load the input dataset,
// apply the masking configuration, write the result.
type Job struct {
	// InputPath is the source file (.csv or .xlsx).
	InputPath string

	// OutputPath is the destination file; its suffix selects the writer.
	OutputPath string

	// OutputFormat is the desired output kind ("csv" or "xlsx"). It must
	// agree with OutputPath's suffix; empty means "infer from the path".
	OutputFormat string

	// SelectedSheet restricts a multi-sheet input to one sheet. Empty
	// loads everything.
	SelectedSheet string

	// Config is the parsed masking configuration.
	Config MaskingConfig
}

// ValidateFormat checks the requested output format against the destination
// path without running the job, so callers can reject a bad request early.
func (j Job) ValidateFormat() error {
	return validateOutputFormat(j.OutputFormat, j.OutputPath)
}

// Run executes a job and returns the per-column report. Load, format and
// configuration problems fail fast with no output written; per-column
// transformation problems do not fail the job and are visible in the report.
func (e *Engine) Run(ctx context.Context, job Job) (*Report, error) {
	if err := validateOutputFormat(job.OutputFormat, job.OutputPath); err != nil {
		return nil, err
	}

	ds, err := dataset.Load(job.InputPath, job.SelectedSheet)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}

	out, report := e.AnonymizeDataset(ds, job.Config)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("job cancelled before save: %w", err)
	}
	if err := dataset.Save(out, job.OutputPath); err != nil {
		return report, fmt.Errorf("save output: %w", err)
	}
	return report, nil
}

// validateOutputFormat checks the requested output kind against the
// destination suffix so a mismatched request fails before any work is done.
func validateOutputFormat(format, path string) error {
	if format == "" {
		return nil
	}
	switch format {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("%w: output format %q", dataset.ErrUnsupportedFormat, format)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != format {
		return fmt.Errorf("output format %q does not match destination suffix %q", format, filepath.Ext(path))
	}
	return nil
}
