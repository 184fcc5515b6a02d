package anonymize

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MethodKind identifies one transformation from the closed method catalog.
type MethodKind string

const (
	MethodNone                MethodKind = "none"
	MethodHash                MethodKind = "hash"
	MethodMask                MethodKind = "mask"
	MethodPseudonymize        MethodKind = "pseudonymize"
	MethodSubstitute          MethodKind = "substitute"
	MethodShuffle             MethodKind = "shuffle"
	MethodPerturb             MethodKind = "perturb"
	MethodGeneralizeNumeric   MethodKind = "generalize_numeric"
	MethodGeneralizeDate      MethodKind = "generalize_date"
	MethodAnonymizeEmail      MethodKind = "anonymize_email"
	MethodAnonymizePhone      MethodKind = "anonymize_phone"
	MethodAnonymizeSSN        MethodKind = "anonymize_ssn"
	MethodKAnonymity          MethodKind = "k_anonymity"
	MethodDifferentialPrivacy MethodKind = "differential_privacy"
	MethodRemove              MethodKind = "remove"
)

// methodKinds is the closed set of recognized method names.
var methodKinds = map[MethodKind]bool{
	MethodNone: true, MethodHash: true, MethodMask: true,
	MethodPseudonymize: true, MethodSubstitute: true, MethodShuffle: true,
	MethodPerturb: true, MethodGeneralizeNumeric: true,
	MethodGeneralizeDate: true, MethodAnonymizeEmail: true,
	MethodAnonymizePhone: true, MethodAnonymizeSSN: true,
	MethodKAnonymity: true, MethodDifferentialPrivacy: true,
	MethodRemove: true,
}

// Methods lists every recognized method name.
func Methods() []string {
	out := make([]string, 0, len(methodKinds))
	for k := range methodKinds {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// Options carries the per-method tuning knobs from the wire config. JSON
// numbers arrive as float64; the accessors normalize.
type Options map[string]any

// String returns the named option as a string, or def when absent.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Int returns the named option as an int, or def when absent or non-numeric.
func (o Options) Int(key string, def int) int {
	switch x := o[key].(type) {
	case float64:
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	default:
		return def
	}
}

// Float returns the named option as a float64, or def when absent.
func (o Options) Float(key string, def float64) float64 {
	switch x := o[key].(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return def
	}
}

// Bool returns the named option as a bool, or def when absent.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// StringSlice returns the named option as a string slice; non-string
// elements are rendered with %v. Returns nil when absent.
func (o Options) StringSlice(key string) []string {
	raw, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

// MethodSpec is the resolved transformation selection for one column.
type MethodSpec struct {
	Method  MethodKind `json:"method"`
	Options Options    `json:"options,omitempty"`
}

// resolveSpec maps a wire method name onto the closed catalog. Unknown names
// resolve to hash with default options: an explicit fallback, not an error,
// so a typo in a config degrades to the strongest default rather than
// leaking the column.
func resolveSpec(method string, opts Options) MethodSpec {
	kind := MethodKind(method)
	if method == "" {
		kind = MethodHash
	}
	if !methodKinds[kind] {
		return MethodSpec{Method: MethodHash}
	}
	return MethodSpec{Method: kind, Options: opts}
}

// UnmarshalJSON accepts both wire forms: a bare method string, and an object
// with "method" and optional "options" fields.
func (m *MethodSpec) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*m = resolveSpec(s, nil)
		return nil
	}

	var obj struct {
		Method  string  `json:"method"`
		Options Options `json:"options"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("method spec must be a string or an object: %w", err)
	}
	*m = resolveSpec(obj.Method, obj.Options)
	return nil
}

// ColumnConfig maps column names to their transformation. Columns absent
// from the config pass through unmodified.
type ColumnConfig map[string]MethodSpec

// MaskingConfig maps sheet names to per-column configs. Sheets absent from
// the config pass through unmodified.
type MaskingConfig map[string]ColumnConfig

// ParseMaskingConfig decodes the wire form of a masking configuration
// (sheet -> column -> method-string-or-object). Malformed JSON is a
// configuration error reported before any transformation starts.
func ParseMaskingConfig(raw []byte) (MaskingConfig, error) {
	var cfg MaskingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse masking config: %w", err)
	}
	return cfg, nil
}

// ValidateMaskingConfig re-reads the raw wire config and reports every
// unrecognized method name. Parsing alone would silently fall back to hash;
// validation lets the caller reject a mistyped config up front instead.
func ValidateMaskingConfig(raw []byte) ([]string, error) {
	var loose map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("parse masking config: %w", err)
	}

	var issues []string
	for sheet, cols := range loose {
		for col, spec := range cols {
			var name string
			if err := json.Unmarshal(spec, &name); err != nil {
				var obj struct {
					Method string `json:"method"`
				}
				if err := json.Unmarshal(spec, &obj); err != nil {
					issues = append(issues, fmt.Sprintf("sheet %q column %q: method spec must be a string or an object", sheet, col))
					continue
				}
				name = obj.Method
			}
			if name != "" && !methodKinds[MethodKind(name)] {
				issues = append(issues, fmt.Sprintf("unknown anonymization method %q for column %q (sheet %q)", name, col, sheet))
			}
		}
	}
	sort.Strings(issues)
	return issues, nil
}
