package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the implicit sheet name assigned to flat delimited
// sources, which carry no sheet structure of their own.
const DefaultSheetName = "Sheet1"

// ErrUnsupportedFormat indicates a file suffix the loader/saver cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEmptyFile indicates an input with no header row.
var ErrEmptyFile = errors.New("empty file")

// Load reads a dataset from a CSV or XLSX file. A CSV yields a single sheet
// named Sheet1. For XLSX, selectedSheet (when non-empty and present in the
// workbook) restricts the result to that one sheet; otherwise every sheet is
// loaded in workbook order.
//
// Legacy .xls workbooks are not supported; convert to .xlsx first.
func Load(path, selectedSheet string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path, selectedSheet)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls is not supported, convert to .xlsx", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are padded below

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyFile)
	}

	table := rowsToTable(records[0], records[1:])
	ds := New()
	ds.Add(DefaultSheetName, table)
	return ds, nil
}

func loadXLSX(path, selectedSheet string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if selectedSheet != "" {
		for _, n := range names {
			if n == selectedSheet {
				names = []string{selectedSheet}
				break
			}
		}
	}

	ds := New()
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			ds.Add(name, NewTable())
			continue
		}
		ds.Add(name, rowsToTable(rows[0], rows[1:]))
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyFile)
	}
	return ds, nil
}

// rowsToTable builds a table from a header row and raw data rows, inferring
// scalar types per cell. Short rows (trailing cells trimmed by the reader)
// are padded with empty strings; long rows are truncated to the header width.
func rowsToTable(header []string, raw [][]string) *Table {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	t := NewTable(cols...)
	for _, rec := range raw {
		row := make([]Value, len(cols))
		for i := range cols {
			if i < len(rec) {
				row[i] = InferValue(rec[i])
			} else {
				row[i] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Save writes a dataset to the path implied by its suffix. CSV keeps only the
// first sheet (a flat file has no section structure); XLSX writes every sheet
// in dataset order.
func Save(ds *Dataset, path string) error {
	if ds.Len() == 0 {
		return errors.New("dataset has no sheets")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return saveCSV(ds, path)
	case ".xlsx":
		return saveXLSX(ds, path)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func saveCSV(ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	table := ds.Sheets[0].Table
	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			rec[i] = FormatValue(v)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func saveXLSX(ds *Dataset, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range ds.Sheets {
		name := sheet.Name
		if i == 0 {
			// Rename the default sheet rather than leaving an empty one behind.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("name sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("add sheet %q: %w", name, err)
			}
		}

		header := make([]any, len(sheet.Table.Columns))
		for j, c := range sheet.Table.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write sheet %q header: %w", name, err)
		}
		for r, row := range sheet.Table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return fmt.Errorf("sheet %q row %d: %w", name, r, err)
			}
			vals := make([]any, len(row))
			copy(vals, row)
			if err := f.SetSheetRow(name, cell, &vals); err != nil {
				return fmt.Errorf("write sheet %q row %d: %w", name, r, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}
