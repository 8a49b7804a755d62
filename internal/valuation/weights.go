package valuation

import (
	"fmt"
	"math"
)

// Weights defines the relative importance of each similarity factor.
// All weights must sum to 1.0.
type Weights struct {
	Distance     float64
	Recency      float64
	LivingArea   float64
	BedsBaths    float64
	Condition    float64
	YearBuilt    float64
	PricePerSqft float64
}

// DefaultWeights returns the standard weight distribution.
func DefaultWeights() Weights {
	return Weights{
		Distance:     0.25,
		Recency:      0.20,
		LivingArea:   0.20,
		BedsBaths:    0.10,
		Condition:    0.10,
		YearBuilt:    0.05,
		PricePerSqft: 0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Distance + w.Recency + w.LivingArea + w.BedsBaths +
		w.Condition + w.YearBuilt + w.PricePerSqft
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{
		w.Distance, w.Recency, w.LivingArea, w.BedsBaths,
		w.Condition, w.YearBuilt, w.PricePerSqft,
	} {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}
