package anonymize

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dataveil/dataveil/internal/dataset"
)

// Status is the outcome of applying one column's configured method.
type Status string

const (
	// StatusApplied: the method transformed (or deliberately passed
	// through, for none) every value in the column.
	StatusApplied Status = "applied"

	// StatusSkipped: the method could not be applied; the column keeps its
	// original, un-anonymized values. Callers must inspect skips before
	// treating output as safe to release.
	StatusSkipped Status = "skipped"

	// StatusRemoved: the column was dropped from the output schema.
	StatusRemoved Status = "removed"
)

// ColumnOutcome records what happened to one configured column.
type ColumnOutcome struct {
	Column string     `json:"column"`
	Method MethodKind `json:"method"`
	Status Status     `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// SheetReport collects the per-column outcomes for one sheet.
type SheetReport struct {
	Sheet    string          `json:"sheet"`
	Outcomes []ColumnOutcome `json:"outcomes,omitempty"`
}

// Skipped returns the outcomes for columns left un-anonymized.
func (r SheetReport) Skipped() []ColumnOutcome {
	var out []ColumnOutcome
	for _, o := range r.Outcomes {
		if o.Status == StatusSkipped {
			out = append(out, o)
		}
	}
	return out
}

// Report collects the outcomes for every sheet of a dataset run.
type Report struct {
	Sheets []SheetReport `json:"sheets"`
}

// Counts tallies outcomes by status across all sheets.
func (r *Report) Counts() (applied, skipped, removed int) {
	for _, s := range r.Sheets {
		for _, o := range s.Outcomes {
			switch o.Status {
			case StatusApplied:
				applied++
			case StatusSkipped:
				skipped++
			case StatusRemoved:
				removed++
			}
		}
	}
	return
}

// FullyApplied reports whether no configured column was skipped.
func (r *Report) FullyApplied() bool {
	_, skipped, _ := r.Counts()
	return skipped == 0
}

// Skipped returns every skipped outcome across all sheets.
func (r *Report) Skipped() []ColumnOutcome {
	var out []ColumnOutcome
	for _, s := range r.Sheets {
		out = append(out, s.Skipped()...)
	}
	return out
}

// AnonymizeTable applies a column configuration to a single table and
// returns a new table plus the per-column outcomes. The input is never
// modified. A failing column keeps its original values and is reported as
// skipped; the remaining columns still process. Columns absent from the
// config are untouched; configured columns absent from the table are
// reported as skipped so config typos surface.
func (e *Engine) AnonymizeTable(t *dataset.Table, cfg ColumnConfig, sheetName string) (*dataset.Table, SheetReport) {
	out := t.Clone()
	report := SheetReport{Sheet: sheetName}

	// Deterministic column order keeps reports and logs stable.
	columns := make([]string, 0, len(cfg))
	for col := range cfg {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		spec := cfg[col]
		outcome := e.applyColumn(out, col, spec)
		if outcome.Status == StatusSkipped {
			slog.Warn("column left un-anonymized",
				"sheet", sheetName,
				"column", col,
				"method", spec.Method,
				"reason", outcome.Reason,
			)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return out, report
}

// applyColumn resolves and applies one column's method against the
// in-progress output table.
func (e *Engine) applyColumn(out *dataset.Table, col string, spec MethodSpec) ColumnOutcome {
	outcome := ColumnOutcome{Column: col, Method: spec.Method}

	if _, ok := out.ColumnIndex(col); !ok {
		outcome.Status = StatusSkipped
		outcome.Reason = "column not present in table"
		return outcome
	}

	switch spec.Method {
	case MethodNone:
		outcome.Status = StatusApplied
		return outcome

	case MethodRemove:
		out.RemoveColumn(col)
		outcome.Status = StatusRemoved
		return outcome

	case MethodShuffle:
		if err := out.SetColumn(col, e.ShuffleColumn(out.Column(col))); err != nil {
			outcome.Status = StatusSkipped
			outcome.Reason = err.Error()
			return outcome
		}
		outcome.Status = StatusApplied
		return outcome

	case MethodKAnonymity:
		k := spec.Options.Int("k", e.defaultK)
		if err := out.SetColumn(col, KAnonymitySuppress(out.Column(col), k)); err != nil {
			outcome.Status = StatusSkipped
			outcome.Reason = err.Error()
			return outcome
		}
		outcome.Status = StatusApplied
		return outcome
	}

	// Per-cell methods: transform into a fresh column and only write it
	// back if every cell succeeded, so a mid-column failure cannot leave a
	// half-anonymized column behind.
	fn := e.cellFunc(spec)
	values := out.Column(col)
	for i, v := range values {
		nv, err := fn(v)
		if err != nil {
			outcome.Status = StatusSkipped
			outcome.Reason = fmt.Sprintf("row %d: %v", i, err)
			return outcome
		}
		values[i] = nv
	}
	if err := out.SetColumn(col, values); err != nil {
		outcome.Status = StatusSkipped
		outcome.Reason = err.Error()
		return outcome
	}
	outcome.Status = StatusApplied
	return outcome
}

// cellFunc resolves a per-cell method spec to its transformation function.
func (e *Engine) cellFunc(spec MethodSpec) func(dataset.Value) (dataset.Value, error) {
	opts := spec.Options
	switch spec.Method {
	case MethodMask:
		maskChar := opts.String("mask_char", "*")
		preserve := opts.Bool("preserve_length", true)
		return func(v dataset.Value) (dataset.Value, error) {
			return e.MaskValue(v, maskChar, preserve), nil
		}
	case MethodPseudonymize:
		prefix := opts.String("prefix", "ID")
		return func(v dataset.Value) (dataset.Value, error) {
			return e.Pseudonymize(v, prefix), nil
		}
	case MethodGeneralizeNumeric:
		binSize := opts.Int("bin_size", 10)
		return func(v dataset.Value) (dataset.Value, error) {
			return e.GeneralizeNumeric(v, binSize), nil
		}
	case MethodGeneralizeDate:
		granularity := opts.String("granularity", "month")
		return func(v dataset.Value) (dataset.Value, error) {
			return e.GeneralizeDate(v, granularity), nil
		}
	case MethodAnonymizeEmail:
		return func(v dataset.Value) (dataset.Value, error) {
			return e.AnonymizeEmail(v), nil
		}
	case MethodAnonymizePhone:
		return func(v dataset.Value) (dataset.Value, error) {
			return e.AnonymizePhone(v), nil
		}
	case MethodAnonymizeSSN:
		return func(v dataset.Value) (dataset.Value, error) {
			return e.AnonymizeSSN(v), nil
		}
	case MethodSubstitute:
		return func(dataset.Value) (dataset.Value, error) {
			return e.Substitute(opts), nil
		}
	case MethodPerturb:
		return func(v dataset.Value) (dataset.Value, error) {
			return e.Perturb(v, opts), nil
		}
	case MethodDifferentialPrivacy:
		epsilon := opts.Float("epsilon", e.epsilon)
		return func(v dataset.Value) (dataset.Value, error) {
			return e.DifferentialPrivacyNoise(v, epsilon), nil
		}
	default:
		// MethodHash, plus anything resolveSpec could not place (which it
		// maps to hash before we get here).
		algorithm := opts.String("algorithm", "sha256")
		return func(v dataset.Value) (dataset.Value, error) {
			return e.HashValue(v, algorithm)
		}
	}
}

// AnonymizeDataset applies a masking configuration across every sheet of a
// dataset. Sheets without a column config pass through unchanged (but are
// still deep-copied: the output never aliases the input). Row counts are
// preserved unconditionally; column order is preserved except for removals.
func (e *Engine) AnonymizeDataset(ds *dataset.Dataset, cfg MaskingConfig) (*dataset.Dataset, *Report) {
	out := dataset.New()
	report := &Report{}

	for _, sheet := range ds.Sheets {
		colCfg, ok := cfg[sheet.Name]
		if !ok || len(colCfg) == 0 {
			out.Add(sheet.Name, sheet.Table.Clone())
			report.Sheets = append(report.Sheets, SheetReport{Sheet: sheet.Name})
			continue
		}
		table, sheetReport := e.AnonymizeTable(sheet.Table, colCfg, sheet.Name)
		out.Add(sheet.Name, table)
		report.Sheets = append(report.Sheets, sheetReport)
	}

	return out, report
}
