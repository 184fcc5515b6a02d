package anonymize

import "sort"

// substitutionLists holds the built-in replacement candidates for the
// substitute method's "type" option. The tables are package-level constants
// in spirit: they are never mutated after initialization.
var substitutionLists = map[string][]string{
	"names": {
		"John Doe", "Jane Smith", "Robert Johnson", "Emily Davis",
		"Michael Brown", "Sarah Wilson", "David Miller", "Lisa Garcia",
		"Chris Martinez", "Anna Taylor",
	},
	"companies": {
		"Acme Corp", "Beta Inc", "Gamma LLC", "Delta Ltd",
		"Alpha Systems", "Omega Solutions", "Phoenix Group",
		"Titan Industries", "Nova Corp", "Prime Tech",
	},
	"cities": {
		"Springfield", "Franklin", "Georgetown", "Madison", "Riverside",
		"Arlington", "Fairview", "Greenville", "Oakland", "Clayton",
	},
	"domains": {
		"example.com", "testdomain.org", "sample.net", "placeholder.co",
		"anonymous.info", "generic.com", "standard.org", "default.net",
	},
	"countries": {
		"Country A", "Country B", "Country C", "Country D", "Country E",
	},
}

// SubstitutionCategories lists the built-in category names accepted by the
// substitute method's "type" option.
func SubstitutionCategories() []string {
	out := make([]string, 0, len(substitutionLists))
	for k := range substitutionLists {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
