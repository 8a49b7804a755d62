package valuation

// Price adjustment rates per unit of difference, each expressed as a
// fraction of the comp's sale price.
const (
	bedAdjustmentRate       = 0.09
	bathAdjustmentRate      = 0.06
	yearBuiltAdjustmentRate = 0.007
)

// livingAreaAdjustment moves the comp's price toward the subject's size
// at the comp's own per-sqft rate. Applies only when both sides report
// square footage.
func livingAreaAdjustment(subject, compSqft int, compSoldPrice float64) float64 {
	if subject <= 0 || compSqft <= 0 {
		return 0
	}
	return float64(subject-compSqft) * (compSoldPrice / float64(compSqft))
}

// bedsBathsAdjustment prices room-count differences as fixed fractions
// of the sale price per bedroom and bathroom.
func bedsBathsAdjustment(subjectBeds, compBeds int, subjectBaths, compBaths, compSoldPrice float64) float64 {
	var adj float64
	if subjectBeds > 0 && compBeds > 0 {
		adj += float64(subjectBeds-compBeds) * compSoldPrice * bedAdjustmentRate
	}
	if subjectBaths > 0 && compBaths > 0 {
		adj += (subjectBaths - compBaths) * compSoldPrice * bathAdjustmentRate
	}
	return adj
}

// yearBuiltAdjustment removes the premium a newer comp commands relative
// to the subject (and adds it back for an older comp).
func yearBuiltAdjustment(subjectYear, compYear int, compSoldPrice float64) float64 {
	if subjectYear <= 0 || compYear <= 0 {
		return 0
	}
	return -float64(compYear-subjectYear) * compSoldPrice * yearBuiltAdjustmentRate
}
