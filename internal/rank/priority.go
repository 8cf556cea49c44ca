package rank

import (
	"math"
	"time"
)

// Params tune the recency decay of the priority score.
type Params struct {
	// RecencyHalfLife is the age at which the recency weight halves.
	RecencyHalfLife time.Duration
	// RecencyFloor keeps very old items faintly visible instead of
	// decaying them to zero. Must be in [0, 1).
	RecencyFloor float64
}

func DefaultParams() Params {
	return Params{
		RecencyHalfLife: 72 * time.Hour,
		RecencyFloor:    0.05,
	}
}

// PriorityScore ranks a feedback item in [0, 100]. The combination is
// multiplicative: an item must be urgent AND relevant AND recent to
// rank highly; a maximally negative but ancient or off-topic item
// cannot dominate.
//
// sentiment is -1..1 (more negative = more urgent), relevance is 0..1.
// Pure and deterministic for a fixed now.
func PriorityScore(sentiment, relevance float64, createdAt, now time.Time, p Params) float64 {
	urgency := (1 - clamp(sentiment, -1, 1)) / 2
	rel := clamp(relevance, 0, 1)
	rec := recencyWeight(createdAt, now, p)
	return clamp(100*urgency*rel*rec, 0, 100)
}

func recencyWeight(createdAt, now time.Time, p Params) float64 {
	halfLife := p.RecencyHalfLife
	if halfLife <= 0 {
		halfLife = DefaultParams().RecencyHalfLife
	}
	floor := clamp(p.RecencyFloor, 0, 0.999)

	age := now.Sub(createdAt)
	if age <= 0 {
		// clock skew or a source reporting a future publish time
		return 1
	}

	w := math.Exp(-math.Ln2 * age.Seconds() / halfLife.Seconds())
	if w < floor {
		return floor
	}
	return w
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
