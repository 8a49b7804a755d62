package extract

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const sampleListing = `100 Oak St, Fort Worth, TX 76102
Sold: 3/15/2024 for $310,000
3 bd | 2.5 ba | 1,450 sqft
Single-family home built in 1985
0.25 acres
Fully updated kitchen with new appliances. Backyard pool.
https://www.zillow.com/homedetails/100-oak-st`

func TestExtractComp_FullListing(t *testing.T) {
	e := NewExtractor(logrus.New())

	comp, err := e.ExtractComp(sampleListing)
	assert.NoError(t, err)
	assert.Equal(t, "100 Oak St, Fort Worth, TX 76102", comp.Address)
	assert.Equal(t, 310000.0, comp.SoldPrice)
	assert.Equal(t, 3, comp.Beds)
	assert.Equal(t, 2.5, comp.Baths)
	assert.Equal(t, 1450, comp.Sqft)
	assert.Equal(t, 1985, comp.YearBuilt)
	assert.Equal(t, "3/15/2024", comp.SoldDate)
	assert.True(t, comp.HasPool)
	assert.InDelta(t, 310000.0/1450, comp.PricePerSqft, 1e-9)
	assert.Contains(t, comp.Description, "updated kitchen")
}

func TestExtractComp_PriceVariants(t *testing.T) {
	e := NewExtractor(logrus.New())

	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{"Comma separated", "55 Pine Ave\nSold for $295,000", 295000},
		{"K suffix", "55 Pine Ave\nSold for $295K", 295000},
		{"Lowercase k", "55 Pine Ave\nAsking $310.5k", 310500},
		{"M suffix", "55 Pine Ave\nListed at $1.2M", 1200000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, err := e.ExtractComp(tt.text)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, comp.SoldPrice)
		})
	}
}

func TestExtractComp_AdmissionInvariant(t *testing.T) {
	e := NewExtractor(logrus.New())

	// No price anywhere.
	_, err := e.ExtractComp("100 Oak St\n3 bd | 2 ba")
	assert.ErrorIs(t, err, ErrNoPrice)

	// Price but no address-shaped line.
	_, err = e.ExtractComp("Gorgeous home sold for $300,000")
	assert.ErrorIs(t, err, ErrNoAddress)
}

func TestExtractComp_PartialListing(t *testing.T) {
	e := NewExtractor(logrus.New())

	comp, err := e.ExtractComp("7 Maple Ct\n$260,000")
	assert.NoError(t, err)
	assert.Equal(t, "7 Maple Ct", comp.Address)
	assert.Equal(t, 260000.0, comp.SoldPrice)

	// Everything unfound stays at its "unknown" zero value.
	assert.Equal(t, 0, comp.Beds)
	assert.Equal(t, 0.0, comp.Baths)
	assert.Equal(t, 0, comp.Sqft)
	assert.Equal(t, 0, comp.YearBuilt)
	assert.Equal(t, "", comp.SoldDate)
	assert.False(t, comp.HasPool)
}

func TestExtractSubject(t *testing.T) {
	e := NewExtractor(logrus.New())

	subject, err := e.ExtractSubject(sampleListing)
	assert.NoError(t, err)
	assert.Equal(t, "100 Oak St, Fort Worth, TX 76102", subject.Address)
	assert.Equal(t, 310000.0, subject.PurchasePrice)
	assert.Equal(t, 3, subject.Beds)
	assert.Equal(t, 2.5, subject.Baths)
	assert.Equal(t, 1450, subject.Sqft)
	assert.Equal(t, 1985, subject.YearBuilt)
	assert.Contains(t, subject.ZillowLink, "zillow.com")

	// Subjects only require an address.
	subject, err = e.ExtractSubject("12 Cedar Ln\nno price listed yet")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, subject.PurchasePrice)

	_, err = e.ExtractSubject("no address in here at all")
	assert.ErrorIs(t, err, ErrNoAddress)
}
