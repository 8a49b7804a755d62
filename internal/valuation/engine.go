package valuation

import (
	"math"
	"sort"
	"time"

	"compscout/server/internal/models"
)

// Method identifies how an estimate was produced.
type Method string

const (
	MethodWeighted Method = "weighted"
	MethodMedian   Method = "median"
	MethodNone     Method = "none"
)

// Breakdown is the per-comp diagnostic record: every sub-score, the raw
// measurement behind it, and the adjusted price. Computed on demand and
// never persisted. ConditionScore may exceed 100 before clamping; the
// final score is always 0-100.
type Breakdown struct {
	CompID            int64    `json:"comp_id"`
	DistanceScore     float64  `json:"distance_score"`
	DistanceMiles     *float64 `json:"distance_miles"`
	RecencyScore      float64  `json:"recency_score"`
	MonthsSinceSale   *float64 `json:"months_since_sale"`
	LivingAreaScore   float64  `json:"living_area_score"`
	SqftDiffPct       *float64 `json:"sqft_diff_pct"`
	BedsBathsScore    float64  `json:"beds_baths_score"`
	BedDiff           int      `json:"bed_diff"`
	BathDiff          float64  `json:"bath_diff"`
	ConditionScore    float64  `json:"condition_score"`
	YearBuiltScore    float64  `json:"year_built_score"`
	YearBuiltDiff     *int     `json:"year_built_diff"`
	PricePerSqftScore float64  `json:"price_per_sqft_score"`
	PricePerSqftPct   *float64 `json:"price_per_sqft_pct"`
	AdjustedPrice     float64  `json:"adjusted_price"`
	FinalScore        int      `json:"final_score"`
}

// CompResult is the per-comp output exposed alongside an estimate.
type CompResult struct {
	CompID          int64   `json:"comp_id"`
	AdjustedPrice   float64 `json:"adjusted_price"`
	SimilarityScore int     `json:"similarity_score"`
}

// Estimate is the output of a full valuation pass. HasEstimate is false
// only when there are no comps; callers must treat ARV 0 in that case as
// "insufficient data", not a computed value.
type Estimate struct {
	ARV         float64      `json:"arv"`
	HasEstimate bool         `json:"has_estimate"`
	Method      Method       `json:"method"`
	CompCount   int          `json:"comp_count"`
	Comps       []CompResult `json:"comps"`
}

// Engine computes ARV estimates from a subject snapshot and its comps.
// All methods are pure and deterministic for a fixed clock.
type Engine struct {
	weights Weights
	now     func() time.Time
}

// NewEngine creates an engine with the given weights. Weights should be
// validated at startup; invalid weights distort every score.
func NewEngine(w Weights) *Engine {
	return &Engine{weights: w, now: time.Now}
}

// Breakdown scores a single comp against the subject, returning every
// sub-score with its raw measurement plus the adjusted price.
func (e *Engine) Breakdown(comp models.ComparableSale, subject models.SubjectProperty) Breakdown {
	b := Breakdown{CompID: comp.ID}

	b.DistanceScore, b.DistanceMiles = distanceScore(subject, comp)
	b.RecencyScore, b.MonthsSinceSale = recencyScore(comp.SoldDate, e.now())
	b.LivingAreaScore, b.SqftDiffPct = livingAreaScore(subject, comp)
	b.BedsBathsScore, b.BedDiff, b.BathDiff = bedsBathsScore(subject, comp)
	b.ConditionScore = conditionScore(subject, comp)
	b.YearBuiltScore, b.YearBuiltDiff = yearBuiltScore(subject, comp)
	b.PricePerSqftScore, b.PricePerSqftPct = pricePerSqftScore(subject, comp)

	adjusted := comp.SoldPrice +
		livingAreaAdjustment(subject.Sqft, comp.Sqft, comp.SoldPrice) +
		bedsBathsAdjustment(subject.Beds, comp.Beds, subject.Baths, comp.Baths, comp.SoldPrice) +
		yearBuiltAdjustment(subject.YearBuilt, comp.YearBuilt, comp.SoldPrice)
	b.AdjustedPrice = math.Round(adjusted)

	weighted := b.DistanceScore*e.weights.Distance +
		b.RecencyScore*e.weights.Recency +
		b.LivingAreaScore*e.weights.LivingArea +
		b.BedsBathsScore*e.weights.BedsBaths +
		b.ConditionScore*e.weights.Condition +
		b.YearBuiltScore*e.weights.YearBuilt +
		b.PricePerSqftScore*e.weights.PricePerSqft
	b.FinalScore = int(clamp(math.Round(weighted), 0, 100))

	return b
}

// Estimate aggregates all comps into a single ARV. The weighted path
// requires usable subject square footage; without it the estimate falls
// back to the median of raw sale prices. Zero comps means no estimate.
func (e *Engine) Estimate(comps []models.ComparableSale, subject models.SubjectProperty) Estimate {
	if len(comps) == 0 {
		return Estimate{Method: MethodNone}
	}

	results := make([]CompResult, len(comps))
	for i, comp := range comps {
		b := e.Breakdown(comp, subject)
		results[i] = CompResult{
			CompID:          comp.ID,
			AdjustedPrice:   b.AdjustedPrice,
			SimilarityScore: b.FinalScore,
		}
	}

	est := Estimate{
		HasEstimate: true,
		CompCount:   len(comps),
		Comps:       results,
	}

	if subject.Sqft <= 0 {
		est.Method = MethodMedian
		est.ARV = medianSoldPrice(comps)
		return est
	}

	var weightedSum, weightSum float64
	for _, r := range results {
		w := float64(r.SimilarityScore) / 100
		weightedSum += r.AdjustedPrice * w
		weightSum += w
	}

	est.Method = MethodWeighted
	if weightSum == 0 {
		// Every comp scored zero; fall back to the plain mean so the
		// division below cannot blow up.
		var sum float64
		for _, r := range results {
			sum += r.AdjustedPrice
		}
		est.ARV = math.Round(sum / float64(len(results)))
		return est
	}

	est.ARV = math.Round(weightedSum / weightSum)
	return est
}

// medianSoldPrice is the standard median of raw sale prices: middle
// value for odd counts, average of the two middles for even counts.
func medianSoldPrice(comps []models.ComparableSale) float64 {
	prices := make([]float64, len(comps))
	for i, c := range comps {
		prices[i] = c.SoldPrice
	}
	sort.Float64s(prices)

	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}
