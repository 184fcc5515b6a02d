package anonymize

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dataveil/dataveil/internal/dataset"
)

// placeholderEmail is returned when email anonymization cannot produce a
// result at all.
const placeholderEmail = "anonymous@example.com"

// publicEmailProviders are kept verbatim when anonymizing email domains; a
// major provider's domain identifies nobody.
var publicEmailProviders = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"outlook.com": true,
}

// dateLayouts is the fixed trial order for parsing date strings: ISO date,
// ISO datetime, US, then EU. Ambiguous dates such as 03/04/2023 resolve to
// the first matching layout; this is a known, accepted ambiguity.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
}

var (
	ssnDashedRe = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	ssnPlainRe  = regexp.MustCompile(`^\d{9}$`)
)

// HashValue hashes the string form of v concatenated with the engine salt
// using the named digest: sha256 (default), sha512, or md5 (legacy data
// only). The output is the lowercase hex digest.
func (e *Engine) HashValue(v dataset.Value, algorithm string) (string, error) {
	input := dataset.FormatValue(v) + e.salt
	switch algorithm {
	case "", "sha256":
		sum := sha256.Sum256([]byte(input))
		return hex.EncodeToString(sum[:]), nil
	case "sha512":
		sum := sha512.Sum512([]byte(input))
		return hex.EncodeToString(sum[:]), nil
	case "md5":
		sum := md5.Sum([]byte(input))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %q", algorithm)
	}
}

// sha256Hex is the internal helper for the hash-derived format-preserving
// methods, which always use sha256.
func (e *Engine) sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s + e.salt))
	return hex.EncodeToString(sum[:])
}

// MaskValue replaces characters of v with maskChar. With preserveLength the
// whole value is masked; otherwise the first and last characters remain
// visible (values of two or fewer characters are fully masked).
func (e *Engine) MaskValue(v dataset.Value, maskChar string, preserveLength bool) string {
	s := dataset.FormatValue(v)
	if maskChar == "" {
		maskChar = "*"
	}
	n := utf8.RuneCountInString(s)
	if preserveLength || n <= 2 {
		return strings.Repeat(maskChar, n)
	}
	r := []rune(s)
	return string(r[0]) + strings.Repeat(maskChar, n-2) + string(r[n-1])
}

// Pseudonymize replaces v with a deterministic pseudonym derived from its
// hash. Equal values produce equal pseudonyms across columns and sheets for
// the same salt, so pseudonymized join keys stay joinable.
func (e *Engine) Pseudonymize(v dataset.Value, prefix string) string {
	if prefix == "" {
		prefix = "ID"
	}
	return prefix + "_" + e.sha256Hex(dataset.FormatValue(v))[:8]
}

// GeneralizeNumeric buckets a numeric value into a bin of the given size and
// renders the bin as "start-end". Non-numeric values pass through as strings.
func (e *Engine) GeneralizeNumeric(v dataset.Value, binSize int) dataset.Value {
	f, ok := toFloat(v)
	if !ok {
		return dataset.FormatValue(v)
	}
	if binSize <= 0 {
		binSize = 10
	}
	n := int64(f) // truncate toward zero before binning
	b := int64(binSize)
	start := floorDiv(n, b) * b
	end := start + b - 1
	return fmt.Sprintf("%d-%d", start, end)
}

// GeneralizeDate reduces a date string's precision to year (YYYY), month
// (YYYY-MM) or quarter (YYYY-Qn). Strings that match none of the accepted
// layouts, and unknown granularities, pass through unchanged.
func (e *Engine) GeneralizeDate(v dataset.Value, granularity string) dataset.Value {
	s := dataset.FormatValue(v)

	var parsed time.Time
	matched := false
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			parsed = t
			matched = true
			break
		}
	}
	if !matched {
		return s
	}

	switch granularity {
	case "year":
		return fmt.Sprintf("%d", parsed.Year())
	case "", "month":
		return fmt.Sprintf("%d-%02d", parsed.Year(), int(parsed.Month()))
	case "quarter":
		q := (int(parsed.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", parsed.Year(), q)
	default:
		return s
	}
}

// AnonymizeEmail replaces the local part of an email with a hash-derived
// token and anonymizes the domain unless it belongs to a public provider.
// The TLD is always preserved so the value still reads as an email address.
// Values without an @ pass through as strings.
func (e *Engine) AnonymizeEmail(v dataset.Value) string {
	s := dataset.FormatValue(v)
	if !strings.Contains(s, "@") {
		return s
	}

	local, domain, _ := strings.Cut(s, "@")
	localHash, err := e.HashValue(local, "sha256")
	if err != nil {
		return placeholderEmail
	}
	anonLocal := "user" + localHash[:8]

	if !publicEmailProviders[domain] {
		parts := strings.Split(domain, ".")
		if len(parts) >= 2 {
			tld := parts[len(parts)-1]
			domainHash, err := e.HashValue(domain, "sha256")
			if err != nil {
				return placeholderEmail
			}
			domain = "company" + domainHash[:6] + "." + tld
		}
	}

	return anonLocal + "@" + domain
}

// AnonymizePhone substitutes every digit of a phone number with a digit
// derived from the number's hash, leaving formatting characters byte for
// byte intact. The output has identical length and punctuation positions.
// Inputs with fewer than seven digits pass through unchanged.
func (e *Engine) AnonymizePhone(v dataset.Value) string {
	s := dataset.FormatValue(v)

	digits := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits++
		}
	}
	if digits < 7 {
		return s
	}

	// Each replacement digit is one hex nibble-pair of the digest reduced
	// mod 10, consumed in order.
	h := e.sha256Hex(s)
	fake := make([]byte, 0, digits)
	for i := 0; i+2 <= len(h) && len(fake) < digits; i += 2 {
		n, _ := strconv.ParseUint(h[i:i+2], 16, 8)
		fake = append(fake, byte('0'+n%10))
	}

	out := []byte(s)
	di := 0
	for i := 0; i < len(out) && di < len(fake); i++ {
		if out[i] >= '0' && out[i] <= '9' {
			out[i] = fake[di]
			di++
		}
	}
	return string(out)
}

// AnonymizeSSN replaces a Social Security Number with a hash-derived 9-digit
// sequence, formatted to match the input: DDD-DD-DDDD if the input was
// dashed, 9 raw digits if it was undashed, the dashed form otherwise.
func (e *Engine) AnonymizeSSN(v dataset.Value) string {
	s := dataset.FormatValue(v)

	h := e.sha256Hex(s)
	num := make([]byte, 0, 9)
	for i := 0; i < len(h) && len(num) < 9; i++ {
		num = append(num, '0'+h[i]%10)
	}

	dashed := fmt.Sprintf("%s-%s-%s", num[:3], num[3:5], num[5:9])
	switch {
	case ssnDashedRe.MatchString(s):
		return dashed
	case ssnPlainRe.MatchString(s):
		return string(num)
	default:
		return dashed
	}
}

// Substitute picks a replacement uniformly at random: from options "list" if
// given, else from the built-in category named by options "type", else the
// redacted sentinel. The original value never influences the result.
func (e *Engine) Substitute(opts Options) string {
	if list := opts.StringSlice("list"); len(list) > 0 {
		return list[e.rand.IntN(len(list))]
	}
	if words, ok := substitutionLists[opts.String("type", "generic")]; ok {
		return words[e.rand.IntN(len(words))]
	}
	return Redacted
}

// Perturb adds random noise to a numeric value. The noise type is uniform
// (default, bounded by options "range", itself defaulting to 10% of the
// value's magnitude), gaussian (standard deviation = "range"), or percentage
// (uniform fraction of the value, default 10%). With "non_negative" the
// result is clamped to its absolute value. Integer inputs produce integers.
// Non-numeric values pass through unchanged.
func (e *Engine) Perturb(v dataset.Value, opts Options) dataset.Value {
	f, ok := toFloat(v)
	if !ok {
		return v
	}

	span := opts.Float("range", math.Abs(f)*0.1)
	var noise float64
	switch opts.String("type", "uniform") {
	case "gaussian":
		noise = e.rand.NormFloat64() * span
	case "percentage":
		pct := opts.Float("percentage", 10)
		noise = e.rand.Uniform(-pct/100, pct/100) * f
	default:
		noise = e.rand.Uniform(-span, span)
	}

	result := f + noise
	if opts.Bool("non_negative", false) && result < 0 {
		result = -result
	}

	if isInt(v) {
		return int64(result)
	}
	return result
}

// DifferentialPrivacyNoise adds zero-mean noise scaled by 1/epsilon to a
// numeric value. This is a best-effort approximation (fixed sensitivity of
// 1, gaussian noise), not a certified differential-privacy mechanism.
// Integer inputs are rounded to the nearest integer after noise; non-numeric
// values pass through unchanged.
func (e *Engine) DifferentialPrivacyNoise(v dataset.Value, epsilon float64) dataset.Value {
	f, ok := toFloat(v)
	if !ok {
		return v
	}
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	noise := e.rand.NormFloat64() * (1.0 / epsilon)
	if isInt(v) {
		return int64(math.Round(f + noise))
	}
	return f + noise
}

// toFloat extracts a numeric cell as float64. Strings are not numeric here:
// numeric-looking text is the loader's concern, and a string that survived
// inference is genuinely textual.
func toFloat(v dataset.Value) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// isInt reports whether the cell holds an integer scalar.
func isInt(v dataset.Value) bool {
	switch v.(type) {
	case int, int64:
		return true
	default:
		return false
	}
}

// floorDiv is integer division rounding toward negative infinity, so
// negative values land in the bin below zero rather than straddling it.
func floorDiv(n, b int64) int64 {
	q := n / b
	if n%b != 0 && (n < 0) != (b < 0) {
		q--
	}
	return q
}
