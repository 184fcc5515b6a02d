package anonymize

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func testEngine() *Engine {
	return New("test_salt")
}

// ----------------------------------------------------------------------------
// Hash
// ----------------------------------------------------------------------------

func TestHashValue_Deterministic(t *testing.T) {
	e := testEngine()

	first, err := e.HashValue("alice@example.com", "sha256")
	if err != nil {
		t.Fatalf("HashValue failed: %v", err)
	}
	second, err := e.HashValue("alice@example.com", "sha256")
	if err != nil {
		t.Fatalf("HashValue failed: %v", err)
	}

	if first != second {
		t.Errorf("same value hashed differently: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64-character sha256 digest, got %d", len(first))
	}
	if first != strings.ToLower(first) {
		t.Errorf("digest not lowercase: %q", first)
	}
}

func TestHashValue_DistinctInputsDiffer(t *testing.T) {
	e := testEngine()

	a, _ := e.HashValue("alice", "sha256")
	b, _ := e.HashValue("bob", "sha256")
	if a == b {
		t.Error("distinct values produced identical digests")
	}
}

func TestHashValue_SaltChangesOutput(t *testing.T) {
	a, _ := New("salt_one").HashValue("alice", "sha256")
	b, _ := New("salt_two").HashValue("alice", "sha256")
	if a == b {
		t.Error("different salts produced identical digests")
	}
}

func TestHashValue_Algorithms(t *testing.T) {
	e := testEngine()

	tests := []struct {
		algorithm string
		length    int
	}{
		{"sha256", 64},
		{"sha512", 128},
		{"md5", 32},
		{"", 64}, // default
	}

	for _, tt := range tests {
		got, err := e.HashValue("value", tt.algorithm)
		if err != nil {
			t.Errorf("HashValue(%q) failed: %v", tt.algorithm, err)
			continue
		}
		if len(got) != tt.length {
			t.Errorf("HashValue(%q) digest length = %d, want %d", tt.algorithm, len(got), tt.length)
		}
	}

	if _, err := e.HashValue("value", "sha1"); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}

// ----------------------------------------------------------------------------
// Mask and pseudonymize
// ----------------------------------------------------------------------------

func TestMaskValue(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		in       any
		char     string
		preserve bool
		want     string
	}{
		{"full mask", "secret", "*", true, "******"},
		{"partial mask", "secret", "*", false, "s****t"},
		{"short value fully masked", "ab", "*", false, "**"},
		{"single char", "a", "*", false, "*"},
		{"custom char", "abcd", "#", true, "####"},
		{"numeric input coerced", int64(12345), "*", true, "*****"},
		{"empty char defaults", "abc", "", true, "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.MaskValue(tt.in, tt.char, tt.preserve); got != tt.want {
				t.Errorf("MaskValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPseudonymize(t *testing.T) {
	e := testEngine()

	a := e.Pseudonymize("alice", "ID")
	b := e.Pseudonymize("alice", "ID")
	if a != b {
		t.Errorf("pseudonym not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "ID_") {
		t.Errorf("expected ID_ prefix, got %q", a)
	}
	if len(a) != len("ID_")+8 {
		t.Errorf("expected 8 hash characters after prefix, got %q", a)
	}

	// Join-key consistency: same value, same pseudonym, regardless of where
	// it appears.
	if e.Pseudonymize("alice", "EMP") == e.Pseudonymize("bob", "EMP") {
		t.Error("distinct values produced identical pseudonyms")
	}

	if got := e.Pseudonymize("alice", ""); !strings.HasPrefix(got, "ID_") {
		t.Errorf("empty prefix should default to ID, got %q", got)
	}
}

// ----------------------------------------------------------------------------
// Generalization
// ----------------------------------------------------------------------------

func TestGeneralizeNumeric(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name    string
		in      any
		binSize int
		want    any
	}{
		{"bin of ten", int64(25), 10, "20-29"},
		{"bin of five", int64(23), 5, "20-24"},
		{"exact boundary", int64(20), 10, "20-29"},
		{"zero", int64(0), 10, "0-9"},
		{"negative", int64(-5), 10, "-10--1"},
		{"float truncates", 27.9, 10, "20-29"},
		{"plain int", 42, 10, "40-49"},
		{"zero bin size defaults", int64(25), 0, "20-29"},
		{"non-numeric passthrough", "abc", 10, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.GeneralizeNumeric(tt.in, tt.binSize); got != tt.want {
				t.Errorf("GeneralizeNumeric(%v, %d) = %v, want %v", tt.in, tt.binSize, got, tt.want)
			}
		})
	}
}

func TestGeneralizeNumeric_BinContainment(t *testing.T) {
	e := testEngine()

	for _, v := range []int64{0, 1, 9, 10, 55, 99, 100, 1234} {
		for _, b := range []int{5, 10, 25} {
			got := e.GeneralizeNumeric(v, b).(string)
			startStr, endStr, ok := strings.Cut(got, "-")
			if !ok {
				t.Fatalf("unparseable bin %q", got)
			}
			start, err := strconv.ParseInt(startStr, 10, 64)
			if err != nil {
				t.Fatalf("unparseable bin start %q: %v", got, err)
			}
			end, err := strconv.ParseInt(endStr, 10, 64)
			if err != nil {
				t.Fatalf("unparseable bin end %q: %v", got, err)
			}
			if v < start || v > end {
				t.Errorf("value %d outside its bin %q", v, got)
			}
			if end-start+1 != int64(b) {
				t.Errorf("bin %q width %d, want %d", got, end-start+1, b)
			}
		}
	}
}

func TestGeneralizeDate(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name        string
		in          any
		granularity string
		want        any
	}{
		{"month default", "2023-05-15", "month", "2023-05"},
		{"quarter", "2023-05-15", "quarter", "2023-Q2"},
		{"year", "2023-05-15", "year", "2023"},
		{"fourth quarter", "2023-12-01", "quarter", "2023-Q4"},
		{"first quarter", "2023-01-31", "quarter", "2023-Q1"},
		{"datetime layout", "2023-05-15 10:30:00", "year", "2023"},
		{"us layout", "05/15/2023", "year", "2023"},
		{"unparseable passthrough", "not-a-date", "month", "not-a-date"},
		{"unknown granularity passthrough", "2023-05-15", "decade", "2023-05-15"},
		{"empty granularity is month", "2023-05-15", "", "2023-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.GeneralizeDate(tt.in, tt.granularity); got != tt.want {
				t.Errorf("GeneralizeDate(%v, %q) = %v, want %v", tt.in, tt.granularity, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Format-preserving anonymizers
// ----------------------------------------------------------------------------

func TestAnonymizeEmail_PublicProviderKept(t *testing.T) {
	e := testEngine()

	got := e.AnonymizeEmail("alice@gmail.com")
	if !strings.HasSuffix(got, "@gmail.com") {
		t.Errorf("public provider domain not preserved: %q", got)
	}
	local, _, _ := strings.Cut(got, "@")
	if !strings.HasPrefix(local, "user") || len(local) != len("user")+8 {
		t.Errorf("unexpected local part: %q", local)
	}
	if strings.Contains(got, "alice") {
		t.Errorf("original local part leaked: %q", got)
	}
}

func TestAnonymizeEmail_CompanyDomainAnonymized(t *testing.T) {
	e := testEngine()

	got := e.AnonymizeEmail("bob@acmecorp.com")
	if strings.Contains(got, "acmecorp") {
		t.Errorf("company domain leaked: %q", got)
	}
	if !strings.HasSuffix(got, ".com") {
		t.Errorf("TLD not preserved: %q", got)
	}
	_, domain, _ := strings.Cut(got, "@")
	if !strings.HasPrefix(domain, "company") {
		t.Errorf("expected hashed company domain, got %q", domain)
	}
}

func TestAnonymizeEmail_Deterministic(t *testing.T) {
	e := testEngine()
	if e.AnonymizeEmail("carol@widgets.org") != e.AnonymizeEmail("carol@widgets.org") {
		t.Error("email anonymization not deterministic")
	}
}

func TestAnonymizeEmail_NonEmailPassthrough(t *testing.T) {
	e := testEngine()
	if got := e.AnonymizeEmail("not an email"); got != "not an email" {
		t.Errorf("non-email modified: %q", got)
	}
	if got := e.AnonymizeEmail(int64(42)); got != "42" {
		t.Errorf("numeric coerced incorrectly: %q", got)
	}
}

func TestAnonymizePhone_FormatPreserved(t *testing.T) {
	e := testEngine()
	in := "(555) 123-4567"
	got := e.AnonymizePhone(in)

	if len(got) != len(in) {
		t.Fatalf("length changed: %q -> %q", in, got)
	}
	digitRe := regexp.MustCompile(`\d`)
	for i := 0; i < len(in); i++ {
		inDigit := digitRe.MatchString(string(in[i]))
		outDigit := digitRe.MatchString(string(got[i]))
		if inDigit != outDigit {
			t.Errorf("digit/non-digit mismatch at %d: %q vs %q", i, in[i], got[i])
		}
		if !inDigit && in[i] != got[i] {
			t.Errorf("formatting character changed at %d: %q vs %q", i, in[i], got[i])
		}
	}
}

func TestAnonymizePhone_Deterministic(t *testing.T) {
	e := testEngine()
	if e.AnonymizePhone("555-123-4567") != e.AnonymizePhone("555-123-4567") {
		t.Error("phone anonymization not deterministic")
	}
}

func TestAnonymizePhone_TooFewDigitsPassthrough(t *testing.T) {
	e := testEngine()
	for _, in := range []string{"123456", "12-34", "ext 42"} {
		if got := e.AnonymizePhone(in); got != in {
			t.Errorf("short input modified: %q -> %q", in, got)
		}
	}
}

func TestAnonymizeSSN(t *testing.T) {
	e := testEngine()

	dashed := e.AnonymizeSSN("123-45-6789")
	if !regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`).MatchString(dashed) {
		t.Errorf("dashed input should yield dashed output, got %q", dashed)
	}
	if dashed == "123-45-6789" {
		t.Error("SSN passed through unchanged")
	}

	plain := e.AnonymizeSSN("123456789")
	if !regexp.MustCompile(`^\d{9}$`).MatchString(plain) {
		t.Errorf("plain input should yield plain output, got %q", plain)
	}

	other := e.AnonymizeSSN("ssn: 1234")
	if !regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`).MatchString(other) {
		t.Errorf("unrecognized input should yield dashed form, got %q", other)
	}

	if e.AnonymizeSSN("123-45-6789") != dashed {
		t.Error("SSN anonymization not deterministic")
	}
}

// ----------------------------------------------------------------------------
// Substitution and noise
// ----------------------------------------------------------------------------

func TestSubstitute_ExplicitList(t *testing.T) {
	e := testEngine()
	opts := Options{"list": []any{"x", "y", "z"}}

	for i := 0; i < 20; i++ {
		got := e.Substitute(opts)
		if got != "x" && got != "y" && got != "z" {
			t.Fatalf("substitute returned value outside list: %q", got)
		}
	}
}

func TestSubstitute_BuiltinCategory(t *testing.T) {
	e := testEngine()

	got := e.Substitute(Options{"type": "names"})
	found := false
	for _, name := range substitutionLists["names"] {
		if got == name {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("substitute returned value outside names category: %q", got)
	}
}

func TestSubstitute_UnknownCategoryRedacted(t *testing.T) {
	e := testEngine()
	if got := e.Substitute(Options{"type": "planets"}); got != Redacted {
		t.Errorf("expected %q, got %q", Redacted, got)
	}
	if got := e.Substitute(Options{}); got != Redacted {
		t.Errorf("expected %q for empty options, got %q", Redacted, got)
	}
}

func TestPerturb_UniformBounded(t *testing.T) {
	e := testEngine()
	opts := Options{"range": float64(5)}

	for i := 0; i < 50; i++ {
		got := e.Perturb(int64(100), opts)
		n, ok := got.(int64)
		if !ok {
			t.Fatalf("integer input should yield int64, got %T", got)
		}
		if n < 95 || n > 105 {
			t.Errorf("perturbed value %d outside [95, 105]", n)
		}
	}
}

func TestPerturb_PercentageBounded(t *testing.T) {
	e := testEngine()
	opts := Options{"type": "percentage", "percentage": float64(10)}

	for i := 0; i < 50; i++ {
		got := e.Perturb(100.0, opts).(float64)
		if got < 90 || got > 110 {
			t.Errorf("percentage-perturbed value %f outside [90, 110]", got)
		}
	}
}

func TestPerturb_NonNegativeClamp(t *testing.T) {
	e := testEngine()
	opts := Options{"range": float64(100), "non_negative": true}

	for i := 0; i < 50; i++ {
		if got := e.Perturb(0.5, opts).(float64); got < 0 {
			t.Errorf("non_negative result below zero: %f", got)
		}
	}
}

func TestPerturb_NonNumericPassthrough(t *testing.T) {
	e := testEngine()
	if got := e.Perturb("abc", Options{}); got != "abc" {
		t.Errorf("non-numeric input modified: %v", got)
	}
}

func TestDifferentialPrivacyNoise(t *testing.T) {
	e := testEngine()

	// Integer input yields an integer.
	if _, ok := e.DifferentialPrivacyNoise(int64(100), 1.0).(int64); !ok {
		t.Error("integer input should yield int64")
	}

	// Float input yields a float.
	if _, ok := e.DifferentialPrivacyNoise(99.5, 1.0).(float64); !ok {
		t.Error("float input should yield float64")
	}

	// A huge epsilon means negligible noise; rounding recovers the value.
	if got := e.DifferentialPrivacyNoise(int64(100), 1e9); got != int64(100) {
		t.Errorf("near-zero noise should round back to 100, got %v", got)
	}

	// Non-numeric input passes through.
	if got := e.DifferentialPrivacyNoise("abc", 1.0); got != "abc" {
		t.Errorf("non-numeric input modified: %v", got)
	}
}
