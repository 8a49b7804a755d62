package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"compscout/server/internal/models"
)

var (
	ErrNoPrice   = errors.New("no sale price found in listing text")
	ErrNoAddress = errors.New("no address found in listing text")
)

var (
	priceRe     = regexp.MustCompile(`(?i)\$\s?([\d,]+(?:\.\d+)?)\s*([kKmM]\b)?`)
	bedsRe      = regexp.MustCompile(`(?i)\b(\d+)\s*(?:bd|bds|bed|beds|bedroom|bedrooms)\b`)
	bathsRe     = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:ba|bath|baths|bathroom|bathrooms)\b`)
	sqftRe      = regexp.MustCompile(`(?i)\b([\d,]+)\s*(?:sq\.?\s?ft\.?|sqft|square\s+feet)`)
	yearBuiltRe = regexp.MustCompile(`(?i)(?:built\s+in|year\s+built:?|built:?)\s*(\d{4})\b`)
	soldDateRe  = regexp.MustCompile(`(?i)(?:sold|closed|listed)(?:\s+on)?[:\s]+(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`)
	lotSizeRe   = regexp.MustCompile(`(?i)\b([\d.,]+\s*(?:acres?|acre lot|sq\.?\s?ft\.?\s+lot))\b`)
	zillowRe    = regexp.MustCompile(`https?://\S*zillow\.com\S*`)
	poolRe      = regexp.MustCompile(`(?i)\bpool\b`)
	addressRe   = regexp.MustCompile(`(?m)^\s*(\d+\s+[A-Za-z0-9 .#'-]+(?:,\s*[A-Za-z .]+)*(?:,?\s*[A-Z]{2}\s*\d{5})?)\s*$`)
	typeRe      = regexp.MustCompile(`(?i)\b(single[- ]family|townhouse|townhome|condo(?:minium)?|duplex|triplex|fourplex|multi[- ]family|manufactured|mobile home)\b`)
)

// Extractor parses pasted marketplace listing text into structured
// property records. It is deliberately forgiving: any field it cannot
// find is left at its zero "unknown" value, except the admission
// invariant fields (price and address for comps, address for subjects).
type Extractor struct {
	logger *logrus.Logger
}

func NewExtractor(logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Extractor{logger: logger}
}

// ExtractComp parses listing text into a ComparableSale. It returns an
// error when the text has no positive price or no recognizable address,
// since such records may not be admitted into a comp set.
func (e *Extractor) ExtractComp(text string) (*models.ComparableSale, error) {
	price := extractPrice(text)
	if price <= 0 {
		return nil, ErrNoPrice
	}

	address := extractAddress(text)
	if address == "" {
		return nil, ErrNoAddress
	}

	comp := &models.ComparableSale{
		Address:      address,
		SoldPrice:    price,
		Beds:         extractInt(bedsRe, text),
		Baths:        extractFloat(bathsRe, text),
		Sqft:         extractGroupedInt(sqftRe, text),
		YearBuilt:    extractInt(yearBuiltRe, text),
		PropertyType: extractMatch(typeRe, text),
		LotSize:      extractMatch(lotSizeRe, text),
		HasPool:      poolRe.MatchString(text),
		SoldDate:     extractMatch(soldDateRe, text),
		Description:  strings.TrimSpace(text),
	}
	if comp.Sqft > 0 {
		comp.PricePerSqft = comp.SoldPrice / float64(comp.Sqft)
	}

	e.logger.WithFields(logrus.Fields{
		"address":    comp.Address,
		"sold_price": comp.SoldPrice,
		"sqft":       comp.Sqft,
	}).Debug("Extracted comp from listing text")

	return comp, nil
}

// ExtractSubject parses listing text into a SubjectProperty. Only the
// address is required; a missing price just means the weighted engine
// loses its price-per-sqft cross-check.
func (e *Extractor) ExtractSubject(text string) (*models.SubjectProperty, error) {
	address := extractAddress(text)
	if address == "" {
		return nil, ErrNoAddress
	}

	subject := &models.SubjectProperty{
		Address:       address,
		PurchasePrice: extractPrice(text),
		Beds:          extractInt(bedsRe, text),
		Baths:         extractFloat(bathsRe, text),
		Sqft:          extractGroupedInt(sqftRe, text),
		YearBuilt:     extractInt(yearBuiltRe, text),
		PropertyType:  extractMatch(typeRe, text),
		Description:   strings.TrimSpace(text),
		ZillowLink:    extractMatch(zillowRe, text),
	}

	e.logger.WithFields(logrus.Fields{
		"address": subject.Address,
		"sqft":    subject.Sqft,
	}).Debug("Extracted subject from listing text")

	return subject, nil
}

// extractPrice finds the first dollar amount, honoring K/M suffixes.
func extractPrice(text string) float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	}
	return value
}

// extractAddress takes the first line that looks like a street address:
// a leading house number followed by a street name.
func extractAddress(text string) string {
	m := addressRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func extractInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func extractGroupedInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func extractFloat(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

func extractMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}
