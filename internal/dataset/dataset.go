// Package dataset defines the in-memory tabular data model used by the
// anonymization engine: a Dataset is an ordered collection of named sheets,
// each sheet a Table of ordered columns and rows of scalar values.
//
// The package also handles loading and saving datasets from delimited (CSV)
// and spreadsheet (XLSX) files, including scalar type inference on load.
package dataset

import (
	"fmt"
	"slices"
)

// Value is a single table cell. Cells hold one of: string, int64, float64.
// Dates are carried as strings and interpreted by the date methods.
type Value = any

// Table is an ordered sequence of rows sharing a common column set.
// Row values are positional: Rows[i][j] belongs to Columns[j].
type Table struct {
	Columns []string
	Rows    [][]Value
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// AppendRow adds a row to the table. The row length must match the column set.
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns a copy of the named column's values in row order.
// Returns nil if the column does not exist.
func (t *Table) Column(name string) []Value {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// SetColumn overwrites the named column with the given values.
// The value count must match the row count.
func (t *Table) SetColumn(name string, values []Value) error {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}
	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	return nil
}

// RemoveColumn drops the named column from the schema and every row.
// Removing a column that does not exist is a no-op.
func (t *Table) RemoveColumn(name string) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return
	}
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = slices.Clone(row)
	}
	return out
}

// Sheet is one named table within a dataset.
type Sheet struct {
	Name  string
	Table *Table
}

// Dataset is an insertion-ordered collection of named sheets. Sheet order is
// irrelevant to correctness but round-trips through multi-sheet formats.
type Dataset struct {
	Sheets []Sheet
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// Add appends a sheet, replacing any existing sheet with the same name
// in place (order preserved).
func (d *Dataset) Add(name string, t *Table) {
	for i, s := range d.Sheets {
		if s.Name == name {
			d.Sheets[i].Table = t
			return
		}
	}
	d.Sheets = append(d.Sheets, Sheet{Name: name, Table: t})
}

// Sheet returns the table for the named sheet.
func (d *Dataset) Sheet(name string) (*Table, bool) {
	for _, s := range d.Sheets {
		if s.Name == name {
			return s.Table, true
		}
	}
	return nil, false
}

// Len returns the number of sheets.
func (d *Dataset) Len() int {
	return len(d.Sheets)
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Sheets: make([]Sheet, len(d.Sheets))}
	for i, s := range d.Sheets {
		out.Sheets[i] = Sheet{Name: s.Name, Table: s.Table.Clone()}
	}
	return out
}
