package valuation

import (
	"math"
	"strings"
	"time"

	"compscout/server/internal/geo"
	"compscout/server/internal/models"
)

// Neutral scores used when a factor has no signal to work with. Factors
// that carry a price adjustment fall back to "no penalty"; purely
// informational factors fall back to "uninformative".
const (
	neutralUninformative = 50.0
	neutralNoPenalty     = 100.0
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// distanceScore maps the great-circle distance between subject and comp
// to 0-100. Either side missing coordinates yields the neutral 50.
func distanceScore(subject models.SubjectProperty, comp models.ComparableSale) (float64, *float64) {
	if subject.Latitude == nil || subject.Longitude == nil ||
		comp.Latitude == nil || comp.Longitude == nil {
		return neutralUninformative, nil
	}

	miles := geo.Miles(
		geo.Point(*subject.Latitude, *subject.Longitude),
		geo.Point(*comp.Latitude, *comp.Longitude),
	)
	return milesToScore(miles), &miles
}

func milesToScore(miles float64) float64 {
	switch {
	case miles <= 0.25:
		return 100
	case miles <= 0.5:
		return 80
	case miles <= 1.0:
		return 50
	default:
		// Linear decay from 50 at 1 mile to 0 at 3 miles.
		return math.Max(0, 50-(miles-1.0)*25)
	}
}

// recencyScore maps months since the sale to 0-100: full credit inside
// six months, tapering to 50 at a year and 0 at eighteen months.
// Missing or unparsable dates yield the neutral 50.
func recencyScore(soldDate string, now time.Time) (float64, *float64) {
	sold, ok := parseSoldDate(soldDate)
	if !ok {
		return neutralUninformative, nil
	}

	months := monthsSince(sold, now)
	return monthsToScore(months), &months
}

func monthsToScore(months float64) float64 {
	switch {
	case months <= 6:
		return 100
	case months <= 12:
		return 50 + ((12-months)/6)*50
	case months <= 18:
		return ((18 - months) / 6) * 50
	default:
		return 0
	}
}

// livingAreaScore penalizes size mismatch up to 30 points, 2 points per
// percent of difference relative to the subject.
func livingAreaScore(subject models.SubjectProperty, comp models.ComparableSale) (float64, *float64) {
	if subject.Sqft <= 0 || comp.Sqft <= 0 {
		return neutralNoPenalty, nil
	}

	diffPct := math.Abs(float64(subject.Sqft-comp.Sqft)) / float64(subject.Sqft) * 100
	score := math.Max(0, 100-math.Min(diffPct*2, 30))
	return score, &diffPct
}

// bedsBathsScore penalizes 10 points per bedroom and 5 per bathroom of
// difference, each counted only when both sides report the field.
func bedsBathsScore(subject models.SubjectProperty, comp models.ComparableSale) (float64, int, float64) {
	score := 100.0
	bedDiff := 0
	bathDiff := 0.0

	if subject.Beds > 0 && comp.Beds > 0 {
		bedDiff = subject.Beds - comp.Beds
		score -= math.Abs(float64(bedDiff)) * 10
	}
	if subject.Baths > 0 && comp.Baths > 0 {
		bathDiff = subject.Baths - comp.Baths
		score -= math.Abs(bathDiff) * 5
	}

	return math.Max(0, score), bedDiff, bathDiff
}

func descriptionFlags(desc string) (updated, asIs bool) {
	lower := strings.ToLower(desc)
	updated = strings.Contains(lower, "updated") ||
		strings.Contains(lower, "renovated") ||
		strings.Contains(lower, "remodeled")
	asIs = strings.Contains(lower, "as-is") ||
		strings.Contains(lower, "as is") ||
		strings.Contains(lower, "fixer")
	return updated, asIs
}

// conditionScore is a keyword heuristic over both descriptions. Matching
// "updated" language on both sides earns a 110 bonus (clamped later in
// the weighted aggregate); disagreeing "as-is" language costs 10.
func conditionScore(subject models.SubjectProperty, comp models.ComparableSale) float64 {
	compUpdated, compAsIs := descriptionFlags(comp.Description)
	subjUpdated, subjAsIs := descriptionFlags(subject.Description)

	if compUpdated && subjUpdated {
		return 110
	}
	if compAsIs != subjAsIs {
		return 90
	}
	return 100
}

// yearBuiltScore allows a decade of age difference for free, then takes
// 1.5 points per extra year up to a 15 point penalty.
func yearBuiltScore(subject models.SubjectProperty, comp models.ComparableSale) (float64, *int) {
	if subject.YearBuilt <= 0 || comp.YearBuilt <= 0 {
		return neutralNoPenalty, nil
	}

	ageDiff := comp.YearBuilt - subject.YearBuilt
	absDiff := math.Abs(float64(ageDiff))
	score := 100.0
	if absDiff > 10 {
		score = math.Max(0, 100-math.Min((absDiff-10)*1.5, 15))
	}
	return score, &ageDiff
}

// pricePerSqftScore cross-checks the comp's $/sqft against the subject's
// purchase-price $/sqft, penalizing 0.3 points per percent of drift up
// to 20 points. It carries no price adjustment: square footage is
// already adjusted directly and this would double-count it.
func pricePerSqftScore(subject models.SubjectProperty, comp models.ComparableSale) (float64, *float64) {
	if comp.Sqft <= 0 || subject.Sqft <= 0 || comp.SoldPrice <= 0 || subject.PurchasePrice <= 0 {
		return neutralNoPenalty, nil
	}

	compPPSF := comp.SoldPrice / float64(comp.Sqft)
	subjectPPSF := subject.PurchasePrice / float64(subject.Sqft)
	diffPct := math.Abs(compPPSF-subjectPPSF) / subjectPPSF * 100
	score := math.Max(0, 100-math.Min(diffPct*0.3, 20))
	return score, &diffPct
}
