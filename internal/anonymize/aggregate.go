package anonymize

import (
	"slices"

	"github.com/dataveil/dataveil/internal/dataset"
)

// ShuffleColumn returns a uniformly random permutation of the column's
// values. The multiset of values is preserved exactly; the row-to-value
// correlation for this column is destroyed, which also severs any
// inter-column correlation involving it.
func (e *Engine) ShuffleColumn(values []dataset.Value) []dataset.Value {
	out := slices.Clone(values)
	e.rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// KAnonymitySuppress replaces every occurrence of any value appearing fewer
// than k times in the column with the suppressed sentinel. Values meeting
// the threshold pass through at every occurrence, so each retained value is
// shared by at least k rows.
func KAnonymitySuppress(values []dataset.Value, k int) []dataset.Value {
	if k <= 0 {
		k = DefaultK
	}

	counts := make(map[dataset.Value]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	out := make([]dataset.Value, len(values))
	for i, v := range values {
		if counts[v] < k {
			out[i] = Suppressed
		} else {
			out[i] = v
		}
	}
	return out
}
