package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// InferValue converts a raw cell string to its most specific scalar type:
// int64, then float64, otherwise the string itself. This mirrors the dtype
// inference the engine's numeric methods rely on (binning, perturbation and
// noise methods act only on numeric cells).
//
// Strings with a leading zero ("00123", zip codes) are kept as strings so the
// round trip through a file does not corrupt them.
func InferValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if hasLeadingZero(s) {
		return s
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// hasLeadingZero reports whether s looks like a zero-padded digit string
// ("007"), optionally signed. "0" and "0.5" do not count.
func hasLeadingZero(s string) bool {
	t := strings.TrimLeft(s, "+-")
	return len(t) > 1 && t[0] == '0' && t[1] != '.'
}

// FormatValue renders a cell scalar back to its string form for delimited
// output and for methods that coerce their input to string.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}
