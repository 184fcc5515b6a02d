// Package security provides the safety rails around file handling: salt and
// session-token generation, filename sanitization, upload validation, and
// detection of sensitive data patterns in free text.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// DefaultSaltLength is the salt size used when none is requested.
	DefaultSaltLength = 32

	// DefaultMaxUploadMB is the upload size ceiling used when none is
	// configured.
	DefaultMaxUploadMB = 100

	// maxFilenameLength caps sanitized filenames, extension included.
	maxFilenameLength = 100
)

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSalt returns a cryptographically secure alphanumeric salt of the
// given length. A non-positive length falls back to DefaultSaltLength.
func GenerateSalt(length int) (string, error) {
	if length <= 0 {
		length = DefaultSaltLength
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(saltAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		out[i] = saltAlphabet[n.Int64()]
	}
	return string(out), nil
}

// SessionID returns a unique 32-character hex session identifier.
func SessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

var (
	unsafeCharRe = regexp.MustCompile(`[<>:"/\\|?*]`)
	dotRunRe     = regexp.MustCompile(`\.\.+`)
)

// SanitizeFilename strips path separators and other unsafe characters from a
// filename so it can never escape the storage directory. Runs of dots
// collapse to one, leading and trailing dots and spaces are trimmed, and the
// result is capped at 100 characters with the extension preserved.
func SanitizeFilename(name string) string {
	s := unsafeCharRe.ReplaceAllString(name, "_")
	s = dotRunRe.ReplaceAllString(s, ".")
	s = strings.Trim(s, ". ")

	if len(s) > maxFilenameLength {
		ext := filepath.Ext(s)
		s = s[:maxFilenameLength-len(ext)] + ext
	}
	return s
}

// allowedUploadExts are the file types the loader can actually read.
var allowedUploadExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// dangerousNameFragments trigger a warning, not a rejection; the stored name
// is sanitized regardless.
var dangerousNameFragments = []string{
	"..", "\\", "/", "<", ">", ":", `"`, "|", "?", "*",
}

// Validation is the outcome of checking one upload. Issues make the file
// invalid; warnings are advisory.
type Validation struct {
	Valid    bool     `json:"valid"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
	SizeMB   float64  `json:"size_mb"`
}

// ValidateUpload checks an uploaded file against the size ceiling and the
// allowed extensions, and flags suspicious filename fragments. A non-positive
// maxSizeMB falls back to DefaultMaxUploadMB.
func ValidateUpload(path string, maxSizeMB int64) Validation {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxUploadMB
	}
	v := Validation{Valid: true, Issues: []string{}, Warnings: []string{}}

	info, err := os.Stat(path)
	if err != nil {
		v.Valid = false
		v.Issues = append(v.Issues, "file does not exist")
		return v
	}

	v.SizeMB = float64(info.Size()) / (1024 * 1024)
	if v.SizeMB > float64(maxSizeMB) {
		v.Valid = false
		v.Issues = append(v.Issues, fmt.Sprintf("file size (%.1fMB) exceeds limit (%dMB)", v.SizeMB, maxSizeMB))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !allowedUploadExts[ext] {
		v.Valid = false
		v.Issues = append(v.Issues, fmt.Sprintf("file type %q not allowed", ext))
	}

	base := filepath.Base(path)
	for _, frag := range dangerousNameFragments {
		if strings.Contains(base, frag) {
			v.Warnings = append(v.Warnings, fmt.Sprintf("potentially unsafe character in filename: %q", frag))
		}
	}

	return v
}

// sensitivePattern pairs a pattern name with its detector. Order is fixed so
// detection output is deterministic.
type sensitivePattern struct {
	name string
	re   *regexp.Regexp
}

var sensitivePatterns = []sensitivePattern{
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"phone", regexp.MustCompile(`\(?[2-9]\d{2}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{"email", regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"credit_card", regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)},
	{"ip_address", regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)},
	{"date", regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{"potential_id", regexp.MustCompile(`\b[A-Z]\d{8,12}\b`)},
}

// DetectSensitivePatterns scans free text for values that look like personal
// data and returns the names of every pattern class found. Used both to warn
// about incoming data and to audit anonymized output for leakage.
func DetectSensitivePatterns(text string) []string {
	var detected []string
	for _, p := range sensitivePatterns {
		if p.re.MatchString(text) {
			detected = append(detected, p.name)
		}
	}
	return detected
}

// QualityReport summarizes a leakage check of anonymized output against its
// original. Scores are heuristic word-overlap measures, not formal privacy
// guarantees.
type QualityReport struct {
	InformationLoss float64  `json:"information_loss"`
	PrivacyScore    float64  `json:"privacy_score"`
	PotentialIssues []string `json:"potential_issues"`
	Recommendations []string `json:"recommendations"`
}

// VerifyQuality compares anonymized text against the original: the fraction
// of original words surviving verbatim, plus a sensitive-pattern scan of the
// output.
func VerifyQuality(original, anonymized string) QualityReport {
	report := QualityReport{
		PotentialIssues: []string{},
		Recommendations: []string{},
	}

	originalWords := wordSet(original)
	anonymizedWords := wordSet(anonymized)

	if len(originalWords) > 0 {
		common := 0
		for w := range originalWords {
			if anonymizedWords[w] {
				common++
			}
		}
		report.InformationLoss = float64(common) / float64(len(originalWords))
	}

	report.PrivacyScore = 1.0 - report.InformationLoss
	if leaked := DetectSensitivePatterns(anonymized); len(leaked) > 0 {
		report.PotentialIssues = append(report.PotentialIssues, leaked...)
		report.Recommendations = append(report.Recommendations, "consider stronger anonymization for detected patterns")
		report.PrivacyScore *= 0.8
	}

	return report
}

func wordSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = true
	}
	return out
}
