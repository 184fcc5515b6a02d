package sample

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/dataveil/dataveil/internal/dataset"
)

func TestGenerateCSV(t *testing.T) {
	g := New(t.TempDir())

	path, err := g.GenerateCSV(25)
	if err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}
	if filepath.Base(path) != CSVName {
		t.Errorf("filename = %s, want %s", filepath.Base(path), CSVName)
	}

	ds, err := dataset.Load(path, "")
	if err != nil {
		t.Fatalf("load generated csv: %v", err)
	}
	tbl := ds.Sheets[0].Table
	if tbl.NumRows() != 25 {
		t.Errorf("row count = %d, want 25", tbl.NumRows())
	}
	for _, col := range []string{"EmployeeID", "Name", "SSN", "Salary", "HireDate"} {
		if _, ok := tbl.ColumnIndex(col); !ok {
			t.Errorf("missing column %q", col)
		}
	}

	// Numeric columns come back as numbers, not strings.
	if _, ok := tbl.Column("Salary")[0].(int64); !ok {
		t.Errorf("Salary not numeric: %T", tbl.Column("Salary")[0])
	}
}

func TestGenerateCSV_DefaultRows(t *testing.T) {
	g := New(t.TempDir())

	path, err := g.GenerateCSV(0)
	if err != nil {
		t.Fatal(err)
	}
	ds, err := dataset.Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := ds.Sheets[0].Table.NumRows(); got != DefaultCSVRows {
		t.Errorf("row count = %d, want %d", got, DefaultCSVRows)
	}
}

func TestGenerateXLSX(t *testing.T) {
	g := New(t.TempDir())

	path, err := g.GenerateXLSX()
	if err != nil {
		t.Fatalf("GenerateXLSX failed: %v", err)
	}

	ds, err := dataset.Load(path, "")
	if err != nil {
		t.Fatalf("load generated xlsx: %v", err)
	}

	var names []string
	for _, s := range ds.Sheets {
		names = append(names, s.Name)
	}
	slices.Sort(names)
	want := []string{"Customers", "Employees", "Transactions"}
	if !slices.Equal(names, want) {
		t.Fatalf("sheets = %v, want %v", names, want)
	}

	employees, _ := ds.Sheet("Employees")
	if employees.NumRows() != 50 {
		t.Errorf("Employees rows = %d, want 50", employees.NumRows())
	}
	customers, _ := ds.Sheet("Customers")
	if customers.NumRows() != 100 {
		t.Errorf("Customers rows = %d, want 100", customers.NumRows())
	}
	transactions, _ := ds.Sheet("Transactions")
	if transactions.NumRows() != 200 {
		t.Errorf("Transactions rows = %d, want 200", transactions.NumRows())
	}
}

func TestGenerateAll(t *testing.T) {
	g := New(t.TempDir())

	got, err := g.GenerateAll()
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if got["csv"] == "" || got["excel"] == "" {
		t.Errorf("GenerateAll = %v, want both csv and excel paths", got)
	}
}
