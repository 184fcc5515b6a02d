// Package sample generates realistic demo datasets so the anonymization
// methods can be exercised without uploading real data: a single-sheet CSV
// of employee records and a multi-sheet XLSX covering employees, customers,
// and transactions.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/dataveil/dataveil/internal/dataset"
)

const (
	// CSVName is the filename of the generated single-sheet sample.
	CSVName = "sample_data.csv"

	// XLSXName is the filename of the generated multi-sheet sample.
	XLSXName = "sample_multisheet.xlsx"

	// DefaultCSVRows is the row count of the CSV sample.
	DefaultCSVRows = 100
)

var (
	employeeNames = []string{
		"Alice Johnson", "Bob Smith", "Charlie Brown", "Diana Prince",
		"Eve Davis", "Frank Miller", "Grace Wilson", "Henry Garcia",
		"Ivy Martinez", "Jack Taylor", "Karen Anderson", "Leo Thompson",
		"Mia Rodriguez", "Noah Lewis", "Olivia Clark",
	}
	customerNames = []string{
		"John Anderson", "Jane Williams", "Mike Brown", "Sarah Davis",
		"Tom Wilson", "Lisa Johnson", "David Miller", "Emily Garcia",
		"Chris Martinez", "Anna Taylor",
	}
	companies = []string{
		"Acme Corp", "Beta Industries", "Gamma Solutions", "Delta Systems",
		"Epsilon Technologies", "Zeta Enterprises", "Eta Innovations", "Theta Labs",
	}
	departments = []string{"Engineering", "Marketing", "Sales", "HR", "Finance", "Operations"}
	managers    = []string{"John Doe", "Jane Smith", "Mike Johnson", "Sarah Williams"}
	cities      = []string{
		"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
		"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	}
	states           = []string{"NY", "CA", "IL", "TX", "AZ", "PA", "TX", "CA", "TX", "CA"}
	streets          = []string{"Main", "Oak", "First", "Second", "Park"}
	transactionTypes = []string{"Purchase", "Refund", "Transfer", "Payment"}
	merchants        = []string{"Amazon", "Walmart", "Target", "Best Buy", "Costco"}
	categories       = []string{"Electronics", "Groceries", "Clothing", "Entertainment", "Travel"}
	paymentMethods   = []string{"Credit Card", "Debit Card", "PayPal", "Bank Transfer"}
	locations        = []string{"New York, NY", "Los Angeles, CA", "Chicago, IL", "Houston, TX"}
)

// Generator produces sample files in a target directory. Demo data needs no
// cryptographic randomness; math/rand keeps generation cheap.
type Generator struct {
	dir string
	rng *rand.Rand
}

// New creates a generator writing into dir.
func New(dir string) *Generator {
	return &Generator{
		dir: dir,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Generator) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

// intBetween returns a random integer in [lo, hi).
func (g *Generator) intBetween(lo, hi int) int64 {
	return int64(lo + g.rng.Intn(hi-lo))
}

func (g *Generator) phone() string {
	return fmt.Sprintf("(%d) %d-%d", g.intBetween(200, 999), g.intBetween(200, 999), g.intBetween(1000, 9999))
}

func (g *Generator) ssn() string {
	return fmt.Sprintf("%d-%d-%d", g.intBetween(100, 999), g.intBetween(10, 99), g.intBetween(1000, 9999))
}

func (g *Generator) address(i int) string {
	return fmt.Sprintf("%d %s St, City %d", g.intBetween(1, 9999), g.pick(streets), i)
}

// dateSeries spreads n dates evenly across [start, end] and renders them as
// ISO dates, matching how real export tools emit evenly spaced timestamps.
func dateSeries(start, end string, n int) []string {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	out := make([]string, n)
	if n == 1 {
		out[0] = s.Format("2006-01-02")
		return out
	}
	step := e.Sub(s) / time.Duration(n-1)
	for i := range out {
		out[i] = s.Add(step * time.Duration(i)).Format("2006-01-02")
	}
	return out
}

// GenerateCSV writes the single-sheet employee sample and returns its path.
func (g *Generator) GenerateCSV(rows int) (string, error) {
	if rows <= 0 {
		rows = DefaultCSVRows
	}

	tbl := dataset.NewTable(
		"EmployeeID", "Name", "Age", "Email", "Phone", "SSN", "Company",
		"Department", "Salary", "HireDate", "City", "State", "CreditScore",
		"AnnualBonus", "ProjectCount",
	)
	hireDates := dateSeries("2020-01-01", "2023-12-31", rows)

	for i := 0; i < rows; i++ {
		name := g.pick(employeeNames)
		company := g.pick(companies)
		email := fmt.Sprintf("%s%d@%s.com",
			strippedLower(name, "."), i, strippedLower(company, ""))

		row := []dataset.Value{
			int64(i + 1),
			name,
			g.intBetween(22, 65),
			email,
			g.phone(),
			g.ssn(),
			company,
			g.pick(departments),
			g.intBetween(40000, 150000),
			hireDates[i],
			g.pick(cities),
			g.pick(states),
			g.intBetween(300, 850),
			g.intBetween(0, 25000),
			g.intBetween(1, 15),
		}
		if err := tbl.AppendRow(row); err != nil {
			return "", err
		}
	}

	ds := dataset.New()
	ds.Add(dataset.DefaultSheetName, tbl)

	path := filepath.Join(g.dir, CSVName)
	if err := dataset.Save(ds, path); err != nil {
		return "", fmt.Errorf("write csv sample: %w", err)
	}
	return path, nil
}

// GenerateXLSX writes the multi-sheet sample (Employees, Customers,
// Transactions) and returns its path.
func (g *Generator) GenerateXLSX() (string, error) {
	ds := dataset.New()
	ds.Add("Employees", g.employeesSheet(50))
	ds.Add("Customers", g.customersSheet(100))
	ds.Add("Transactions", g.transactionsSheet(200, 100))

	path := filepath.Join(g.dir, XLSXName)
	if err := dataset.Save(ds, path); err != nil {
		return "", fmt.Errorf("write xlsx sample: %w", err)
	}
	return path, nil
}

func (g *Generator) employeesSheet(rows int) *dataset.Table {
	tbl := dataset.NewTable(
		"EmployeeID", "Name", "Age", "DateOfBirth", "Email", "Phone", "SSN",
		"Department", "Salary", "HireDate", "Manager", "Address", "EmergencyContact",
	)
	births := dateSeries("1960-01-01", "2000-12-31", rows)
	hires := dateSeries("2015-01-01", "2023-12-31", rows)

	for i := 0; i < rows; i++ {
		tbl.AppendRow([]dataset.Value{
			int64(i + 1),
			g.pick(employeeNames[:10]),
			g.intBetween(22, 65),
			births[i],
			fmt.Sprintf("employee%d@company.com", i+1),
			g.phone(),
			g.ssn(),
			g.pick(departments),
			g.intBetween(40000, 150000),
			hires[i],
			g.pick(managers),
			g.address(i + 1),
			fmt.Sprintf("Contact%d@family.com", i+1),
		})
	}
	return tbl
}

func (g *Generator) customersSheet(rows int) *dataset.Table {
	tbl := dataset.NewTable(
		"CustomerID", "Name", "Email", "Phone", "Address", "City", "State",
		"ZipCode", "CreditScore", "AnnualIncome", "AccountBalance", "LastPurchaseDate",
	)
	purchases := dateSeries("2023-01-01", "2023-12-31", rows)

	for i := 0; i < rows; i++ {
		balance := 100 + g.rng.Float64()*(50000-100)
		tbl.AppendRow([]dataset.Value{
			int64(i + 1),
			g.pick(customerNames),
			fmt.Sprintf("customer%d@email.com", i+1),
			g.phone(),
			g.address(i + 1),
			g.pick(cities[:5]),
			g.pick(states[:5]),
			fmt.Sprintf("%d", g.intBetween(10000, 99999)),
			g.intBetween(300, 850),
			g.intBetween(30000, 200000),
			roundCents(balance),
			purchases[i],
		})
	}
	return tbl
}

func (g *Generator) transactionsSheet(rows, customers int) *dataset.Table {
	tbl := dataset.NewTable(
		"TransactionID", "CustomerID", "Amount", "TransactionDate",
		"TransactionType", "MerchantName", "Category", "PaymentMethod", "Location",
	)
	dates := dateSeries("2023-01-01", "2023-12-31", rows)

	for i := 0; i < rows; i++ {
		amount := 10 + g.rng.Float64()*(5000-10)
		tbl.AppendRow([]dataset.Value{
			int64(i + 1),
			g.intBetween(1, customers+1),
			roundCents(amount),
			dates[i],
			g.pick(transactionTypes),
			g.pick(merchants),
			g.pick(categories),
			g.pick(paymentMethods),
			g.pick(locations),
		})
	}
	return tbl
}

// GenerateAll writes every sample file and returns name -> path.
func (g *Generator) GenerateAll() (map[string]string, error) {
	csvPath, err := g.GenerateCSV(DefaultCSVRows)
	if err != nil {
		return nil, err
	}
	xlsxPath, err := g.GenerateXLSX()
	if err != nil {
		return nil, err
	}
	return map[string]string{"csv": csvPath, "excel": xlsxPath}, nil
}

// strippedLower lowercases s and replaces spaces with sep, producing the
// email-safe form of a name or company.
func strippedLower(s, sep string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", sep)
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}
