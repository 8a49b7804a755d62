package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWeights_SumToOne(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.NoError(t, w.Validate())
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name        string
		weights     Weights
		expectError bool
	}{
		{
			name:        "Default weights",
			weights:     DefaultWeights(),
			expectError: false,
		},
		{
			name: "Sum below one",
			weights: Weights{
				Distance: 0.25, Recency: 0.20, LivingArea: 0.20,
				BedsBaths: 0.10, Condition: 0.10, YearBuilt: 0.05,
			},
			expectError: true,
		},
		{
			name: "Negative weight",
			weights: Weights{
				Distance: 0.35, Recency: 0.20, LivingArea: 0.20,
				BedsBaths: 0.10, Condition: 0.10, YearBuilt: -0.05,
				PricePerSqft: 0.10,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
