// Package quality converts raw similarity scores (0-1) into the 0-10
// quality scale used for human-facing reporting and gap thresholds.
package quality

import (
	"math"
)

// Status is the discrete quality band for a scored query.
type Status string

const (
	StatusGood Status = "good"
	StatusWeak Status = "weak"
	StatusPoor Status = "poor"
)

// Band thresholds on the 0-10 quality scale. Named constants, not
// recomputed per call; a run uses one fixed set.
const (
	// GoodThreshold is the minimum quality score for StatusGood.
	GoodThreshold = 7.0

	// WeakThreshold is the minimum quality score for StatusWeak.
	WeakThreshold = 5.0
)

// Thresholds carries the band cutoffs so a run can configure them
// once. Results bank their Status at creation, so every consumer of a
// run (summaries, persistence, gap analysis) sees the same banding.
type Thresholds struct {
	Good float64
	Weak float64
}

// DefaultThresholds returns the standard 7.0/5.0 cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Good: GoodThreshold, Weak: WeakThreshold}
}

// NewThresholds builds band cutoffs, substituting the defaults for
// non-positive values.
func NewThresholds(good, weak float64) Thresholds {
	if good <= 0 {
		good = GoodThreshold
	}
	if weak <= 0 {
		weak = WeakThreshold
	}
	return Thresholds{Good: good, Weak: weak}
}

// FromSimilarity maps a similarity in [0,1] to a quality score in
// [0,10] with one decimal place. Total function: out-of-range inputs
// are clamped (cosine similarity can be slightly negative).
func FromSimilarity(similarity float64) float64 {
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	return math.Round(similarity*100) / 10
}

// StatusOf returns the band for a quality score under the default
// thresholds: good ≥7.0, weak ≥5.0, else poor.
func StatusOf(score float64) Status {
	return DefaultThresholds().StatusOf(score)
}

// StatusOf returns the band for a quality score under these thresholds.
func (t Thresholds) StatusOf(score float64) Status {
	switch {
	case score >= t.Good:
		return StatusGood
	case score >= t.Weak:
		return StatusWeak
	default:
		return StatusPoor
	}
}

// SuccessRate returns the fraction of results in the good band, read
// from each result's banked Status so configured thresholds carry
// through. Empty input yields 0.
func SuccessRate(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	good := 0
	for _, r := range results {
		if r.Status == StatusGood {
			good++
		}
	}
	return float64(good) / float64(len(results))
}

// BatchScore converts a batch of similarities to a single quality
// score by averaging the similarities first and converting once.
//
// Averaging already-converted per-item quality scores silently diverges
// under per-item rounding, so that order is deliberately not offered.
func BatchScore(similarities []float64) float64 {
	if len(similarities) == 0 {
		return 0
	}
	var sum float64
	for _, s := range similarities {
		sum += s
	}
	return FromSimilarity(sum / float64(len(similarities)))
}
