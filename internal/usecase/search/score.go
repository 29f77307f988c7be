package search

import "github.com/scholium/paperdex/internal/domain/search/hit"

// Score tunables. The threshold and divisor were tuned empirically against
// name-search edge cases and are corpus- and model-dependent, so they are
// configuration with these defaults rather than constants.
const (
	// DefaultMinScorePct is the relevance cutoff on the 0-100 scale.
	// 5% (~0.985 cosine distance) keeps exact person-name and identifier
	// matches, which score poorly on pure semantic distance, while still
	// rejecting one-character name typos (distance > 0.99).
	DefaultMinScorePct = 5.0
	// DefaultDistanceDivisor maps the useful distance band onto 0-100:
	// distances <= 0.70 saturate at 100%, distances >= 1.0 at 0%.
	DefaultDistanceDivisor = 0.30
	// DefaultOversample is how many times the requested limit each
	// retrieval sub-query fetches, to survive dedup and thresholding.
	DefaultOversample = 4
)

// Config holds the engine tunables. The zero value means "use defaults";
// it is passed in at construction, never read from ambient state.
type Config struct {
	MinScorePct     float64
	DistanceDivisor float64
	Oversample      int
}

func (c *Config) applyDefaults() {
	if c.MinScorePct <= 0 {
		c.MinScorePct = DefaultMinScorePct
	}
	if c.DistanceDivisor <= 0 {
		c.DistanceDivisor = DefaultDistanceDivisor
	}
	if c.Oversample <= 0 {
		c.Oversample = DefaultOversample
	}
}

// scoreFromDistance converts a cosine distance to a 0-100 percentage.
// Monotonic: a smaller distance never scores below a larger one.
func scoreFromDistance(distance, divisor float64) float64 {
	pct := (1.0 - distance) / divisor * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// normalize converts a hit's raw score to the common 0-100 scale.
// Lexical rank quality in [0,1] is first mapped to a pseudo-distance
// (1 - 2*rank, floored at 0) so both channels share one formula and the
// merger can compare them directly.
func normalize(h *hit.Hit, divisor float64) float64 {
	switch h.Channel {
	case hit.Lexical:
		d := 1.0 - h.Raw*2.0
		if d < 0 {
			d = 0
		}
		return scoreFromDistance(d, divisor)
	default:
		return scoreFromDistance(h.Raw, divisor)
	}
}
