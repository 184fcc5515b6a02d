package security

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt(32)
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	if len(salt) != 32 {
		t.Errorf("salt length = %d, want 32", len(salt))
	}
	if !regexp.MustCompile(`^[A-Za-z0-9]+$`).MatchString(salt) {
		t.Errorf("salt contains non-alphanumeric characters: %q", salt)
	}

	other, err := GenerateSalt(32)
	if err != nil {
		t.Fatal(err)
	}
	if salt == other {
		t.Error("two salts were identical")
	}

	if def, _ := GenerateSalt(0); len(def) != DefaultSaltLength {
		t.Errorf("default salt length = %d, want %d", len(def), DefaultSaltLength)
	}
}

func TestSessionID(t *testing.T) {
	a, err := SessionID()
	if err != nil {
		t.Fatalf("SessionID failed: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("session id length = %d, want 32", len(a))
	}
	if !regexp.MustCompile(`^[0-9a-f]+$`).MatchString(a) {
		t.Errorf("session id not lowercase hex: %q", a)
	}
	if b, _ := SessionID(); a == b {
		t.Error("two session ids were identical")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean name untouched", "report.csv", "report.csv"},
		{"path separators replaced", `..\..\etc\passwd`, "_._etc_passwd"},
		{"traversal dots collapsed", "data..csv", "data.csv"},
		{"shell characters replaced", `a<b>c:d"e|f?g*.csv`, "a_b_c_d_e_f_g_.csv"},
		{"leading dots trimmed", "...hidden.csv", "hidden.csv"},
		{"trailing spaces trimmed", "name.csv  ", "name.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_LengthCapPreservesExtension(t *testing.T) {
	long := strings.Repeat("a", 200) + ".xlsx"
	got := SanitizeFilename(long)

	if len(got) > 100 {
		t.Errorf("sanitized length = %d, want <= 100", len(got))
	}
	if !strings.HasSuffix(got, ".xlsx") {
		t.Errorf("extension lost: %q", got)
	}
}

func TestValidateUpload(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(good, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := ValidateUpload(good, 100)
	if !v.Valid {
		t.Errorf("valid upload rejected: %+v", v)
	}
	if len(v.Issues) != 0 {
		t.Errorf("unexpected issues: %v", v.Issues)
	}

	v = ValidateUpload(filepath.Join(dir, "absent.csv"), 100)
	if v.Valid {
		t.Error("missing file accepted")
	}

	bad := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(bad, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	v = ValidateUpload(bad, 100)
	if v.Valid {
		t.Error("disallowed extension accepted")
	}

	xls := filepath.Join(dir, "legacy.xls")
	if err := os.WriteFile(xls, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if v := ValidateUpload(xls, 100); v.Valid {
		t.Error("legacy .xls accepted but the loader cannot read it")
	}
}

func TestValidateUpload_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.csv")
	if err := os.WriteFile(big, make([]byte, 2*1024*1024), 0o644); err != nil {
		t.Fatal(err)
	}

	v := ValidateUpload(big, 1)
	if v.Valid {
		t.Error("oversized file accepted")
	}
	if v.SizeMB < 1.9 || v.SizeMB > 2.1 {
		t.Errorf("SizeMB = %f, want ~2", v.SizeMB)
	}

	if v := ValidateUpload(big, 100); !v.Valid {
		t.Errorf("file under the limit rejected: %+v", v)
	}
}

func TestDetectSensitivePatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"ssn", "employee ssn is 123-45-6789", []string{"ssn"}},
		{"email", "contact alice@example.com today", []string{"email"}},
		{"credit card", "card 4111-1111-1111-1111 on file", []string{"credit_card"}},
		{"ip address", "request from 192.168.1.100", []string{"ip_address"}},
		{"date", "hired 05/15/2023", []string{"date"}},
		{"employee id", "badge A123456789", []string{"potential_id"}},
		{"clean text", "nothing to see here", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectSensitivePatterns(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("DetectSensitivePatterns(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestVerifyQuality(t *testing.T) {
	report := VerifyQuality("alice smith 123-45-6789", "a1b2c3 d4e5f6 987-65-4321")

	if report.InformationLoss != 0 {
		t.Errorf("no words survive but InformationLoss = %f", report.InformationLoss)
	}
	if len(report.PotentialIssues) == 0 {
		t.Error("leaked SSN pattern not reported")
	}
	if report.PrivacyScore >= 1.0 {
		t.Errorf("leakage should reduce the privacy score, got %f", report.PrivacyScore)
	}
}

func TestVerifyQuality_IdenticalText(t *testing.T) {
	report := VerifyQuality("hello world", "hello world")
	if report.InformationLoss != 1.0 {
		t.Errorf("InformationLoss = %f, want 1.0", report.InformationLoss)
	}
	if report.PrivacyScore != 0 {
		t.Errorf("PrivacyScore = %f, want 0", report.PrivacyScore)
	}
}
