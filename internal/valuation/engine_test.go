package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"compscout/server/internal/models"
)

func fixedEngine() *Engine {
	e := NewEngine(DefaultWeights())
	e.now = func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	return e
}

func TestEstimate_NoComps(t *testing.T) {
	e := fixedEngine()
	est := e.Estimate(nil, models.SubjectProperty{Sqft: 1500})

	assert.False(t, est.HasEstimate)
	assert.Equal(t, MethodNone, est.Method)
	assert.Equal(t, 0.0, est.ARV)
	assert.Empty(t, est.Comps)
}

func TestEstimate_MedianFallback(t *testing.T) {
	e := fixedEngine()
	subject := models.SubjectProperty{ID: 1} // no usable sqft

	comps := []models.ComparableSale{
		{ID: 1, Address: "100 Oak St", SoldPrice: 300000},
		{ID: 2, Address: "102 Oak St", SoldPrice: 320000},
		{ID: 3, Address: "104 Oak St", SoldPrice: 310000},
	}

	est := e.Estimate(comps, subject)
	assert.True(t, est.HasEstimate)
	assert.Equal(t, MethodMedian, est.Method)
	assert.Equal(t, 310000.0, est.ARV)

	// Even count averages the two middle values.
	est = e.Estimate(comps[:2], subject)
	assert.Equal(t, MethodMedian, est.Method)
	assert.Equal(t, 310000.0, est.ARV)

	// A single comp is its own median.
	est = e.Estimate(comps[:1], subject)
	assert.Equal(t, 300000.0, est.ARV)
}

func TestEstimate_CloseCompScenario(t *testing.T) {
	e := fixedEngine()

	subject := models.SubjectProperty{
		ID:            1,
		Sqft:          1500,
		Beds:          3,
		Baths:         2,
		YearBuilt:     2000,
		PurchasePrice: 300000,
		Latitude:      f64(32.7555),
		Longitude:     f64(-97.3308),
	}
	comp := models.ComparableSale{
		ID:        10,
		Address:   "100 Oak St",
		SoldPrice: 280000,
		Sqft:      1400,
		Beds:      3,
		Baths:     2,
		YearBuilt: 2000,
		SoldDate:  "4/15/2024",
		Latitude:  f64(32.7560),
		Longitude: f64(-97.3308),
	}

	b := e.Breakdown(comp, subject)

	// 100 sqft short, adjusted at the comp's own $200/sqft rate.
	assert.Equal(t, 300000.0, b.AdjustedPrice)
	assert.Equal(t, 100.0, b.DistanceScore)
	assert.Equal(t, 100.0, b.RecencyScore)
	assert.InDelta(t, 100-(100.0/1500*100)*2, b.LivingAreaScore, 1e-9)
	assert.Equal(t, 100.0, b.BedsBathsScore)
	assert.Equal(t, 100.0, b.ConditionScore)
	assert.Equal(t, 100.0, b.YearBuiltScore)
	assert.Equal(t, 100.0, b.PricePerSqftScore)
	assert.Greater(t, b.FinalScore, 90)

	est := e.Estimate([]models.ComparableSale{comp}, subject)
	assert.Equal(t, MethodWeighted, est.Method)
	assert.Equal(t, 300000.0, est.ARV)
	assert.Equal(t, b.FinalScore, est.Comps[0].SimilarityScore)
}

func TestEstimate_WeightedAverage(t *testing.T) {
	e := fixedEngine()

	subject := models.SubjectProperty{ID: 1, Sqft: 1500, PurchasePrice: 300000}
	comps := []models.ComparableSale{
		{ID: 1, Address: "100 Oak St", SoldPrice: 300000, Sqft: 1500, SoldDate: "5/1/2024"},
		{ID: 2, Address: "900 Elm St", SoldPrice: 400000, Sqft: 1500, SoldDate: "1/1/2021"},
	}

	est := e.Estimate(comps, subject)
	assert.Equal(t, MethodWeighted, est.Method)

	// The stale, overpriced comp scores lower, so the ARV leans toward
	// the fresh one rather than sitting at the midpoint.
	assert.Less(t, est.ARV, 350000.0)
	assert.Greater(t, est.ARV, 300000.0)

	s1 := est.Comps[0].SimilarityScore
	s2 := est.Comps[1].SimilarityScore
	assert.Greater(t, s1, s2)

	expected := (300000*float64(s1)/100 + 400000*float64(s2)/100) /
		(float64(s1)/100 + float64(s2)/100)
	assert.InDelta(t, expected, est.ARV, 0.5)
}

func TestEstimate_ZeroWeightSumFallsBackToMean(t *testing.T) {
	// All-zero weights force every similarity score to zero, which must
	// degrade to the unweighted mean instead of dividing by zero.
	e := &Engine{weights: Weights{}, now: time.Now}

	subject := models.SubjectProperty{ID: 1, Sqft: 1500}
	comps := []models.ComparableSale{
		{ID: 1, Address: "100 Oak St", SoldPrice: 300000, Sqft: 1500},
		{ID: 2, Address: "102 Oak St", SoldPrice: 310000, Sqft: 1500},
	}

	est := e.Estimate(comps, subject)
	assert.Equal(t, 305000.0, est.ARV)
}

func TestEstimate_Deterministic(t *testing.T) {
	e := fixedEngine()

	subject := models.SubjectProperty{
		ID: 1, Sqft: 1480, Beds: 3, Baths: 2, YearBuilt: 1995,
		PurchasePrice: 290000,
		Latitude:      f64(32.7555), Longitude: f64(-97.3308),
	}
	comps := []models.ComparableSale{
		{ID: 1, Address: "100 Oak St", SoldPrice: 285000, Sqft: 1400, Beds: 3, Baths: 2, YearBuilt: 1990, SoldDate: "12/20/2023", Latitude: f64(32.7570), Longitude: f64(-97.3290)},
		{ID: 2, Address: "55 Pine Ave", SoldPrice: 312000, Sqft: 1600, Beds: 4, Baths: 2.5, YearBuilt: 2005, SoldDate: "2/2/2024", Description: "fully renovated"},
		{ID: 3, Address: "7 Maple Ct", SoldPrice: 260000, Sqft: 0, Beds: 2, Baths: 1, YearBuilt: 0, SoldDate: "bad date"},
	}

	first := e.Estimate(comps, subject)
	second := e.Estimate(comps, subject)
	assert.Equal(t, first, second)

	for i, comp := range comps {
		b1 := e.Breakdown(comp, subject)
		b2 := e.Breakdown(comp, subject)
		assert.Equal(t, b1, b2, "comp %d", i)
	}
}

func TestBreakdown_AllScoresClamped(t *testing.T) {
	e := fixedEngine()

	subject := models.SubjectProperty{
		ID: 1, Sqft: 1500, Beds: 3, Baths: 2, YearBuilt: 2000,
		PurchasePrice: 300000, Description: "updated throughout",
		Latitude: f64(32.7555), Longitude: f64(-97.3308),
	}
	comps := []models.ComparableSale{
		// Bonus case: condition 110 pre-clamp, everything else perfect.
		{ID: 1, Address: "100 Oak St", SoldPrice: 300000, Sqft: 1500, Beds: 3, Baths: 2, YearBuilt: 2000, SoldDate: "5/1/2024", Description: "renovated kitchen", Latitude: f64(32.7556), Longitude: f64(-97.3308)},
		// Worst case: far, stale, wrong size, wrong rooms, old.
		{ID: 2, Address: "999 Far Rd", SoldPrice: 100000, Sqft: 600, Beds: 1, Baths: 1, YearBuilt: 1940, SoldDate: "1/1/2019", Description: "fixer", Latitude: f64(33.5), Longitude: f64(-98.5)},
	}

	for _, comp := range comps {
		b := e.Breakdown(comp, subject)
		assert.GreaterOrEqual(t, b.FinalScore, 0)
		assert.LessOrEqual(t, b.FinalScore, 100)
		for _, s := range []float64{
			b.DistanceScore, b.RecencyScore, b.LivingAreaScore,
			b.BedsBathsScore, b.YearBuiltScore, b.PricePerSqftScore,
		} {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 100.0)
		}
	}

	// The condition bonus survives in the breakdown but never in the
	// final score.
	b := e.Breakdown(comps[0], subject)
	assert.Equal(t, 110.0, b.ConditionScore)
	assert.Equal(t, 100, b.FinalScore)
}

func TestMedianSoldPrice(t *testing.T) {
	comps := func(prices ...float64) []models.ComparableSale {
		out := make([]models.ComparableSale, len(prices))
		for i, p := range prices {
			out[i] = models.ComparableSale{SoldPrice: p}
		}
		return out
	}

	assert.Equal(t, 310000.0, medianSoldPrice(comps(300000, 320000, 310000)))
	assert.Equal(t, 310000.0, medianSoldPrice(comps(300000, 320000)))
	assert.Equal(t, 250000.0, medianSoldPrice(comps(250000)))
	assert.Equal(t, 275000.0, medianSoldPrice(comps(300000, 250000, 200000, 350000)))
}
