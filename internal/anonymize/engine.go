// Package anonymize implements the anonymization engine: a catalog of
// per-value and whole-column transformation methods, the dispatch logic that
// maps a masking configuration onto a table, and the orchestration across the
// sheets of a multi-sheet dataset.
//
// The engine never mutates its input dataset. Per-column failures are
// isolated: a column whose method cannot be applied keeps its original values
// and is reported as skipped, so callers can decide whether partially
// anonymized output is safe to release.
package anonymize

// Sentinels written into the output in place of suppressed or redacted values.
const (
	Suppressed = "[SUPPRESSED]"
	Redacted   = "[REDACTED]"
)

const (
	// DefaultK is the minimum group size for k-anonymity suppression.
	DefaultK = 5

	// DefaultEpsilon is the privacy budget for the differential-privacy
	// noise method. The noise is a simplified approximation (fixed
	// sensitivity of 1, gaussian in place of calibrated Laplace), not a
	// certified mechanism.
	DefaultEpsilon = 1.0

	// defaultSalt is used when no salt is supplied. Production deployments
	// should always configure an explicit secret salt.
	defaultSalt = "default_salt"
)

// Engine applies masking configurations to tables and datasets. The salt is
// fixed at construction and mixed into every hash-derived method, so outputs
// are consistent within a run (and across runs sharing the salt).
//
// An Engine is safe for concurrent use.
type Engine struct {
	salt     string
	rand     *secureRand
	defaultK int
	epsilon  float64
}

// Option customizes engine construction.
type Option func(*Engine)

// WithDefaultK overrides the default k for k-anonymity suppression.
func WithDefaultK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.defaultK = k
		}
	}
}

// WithDefaultEpsilon overrides the default epsilon for differential-privacy
// noise.
func WithDefaultEpsilon(eps float64) Option {
	return func(e *Engine) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

// New creates an engine with the given salt. An empty salt falls back to a
// fixed default, which offers no protection against precomputed dictionaries.
func New(salt string, opts ...Option) *Engine {
	if salt == "" {
		salt = defaultSalt
	}
	e := &Engine{
		salt:     salt,
		rand:     newSecureRand(),
		defaultK: DefaultK,
		epsilon:  DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
