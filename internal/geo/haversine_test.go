package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiles_SamePoint(t *testing.T) {
	p := Point(32.7555, -97.3308)
	assert.Equal(t, 0.0, Miles(p, p))
}

func TestMiles_KnownDistances(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lng1     float64
		lat2     float64
		lng2     float64
		expected float64
		delta    float64
	}{
		{
			name: "Dallas to Fort Worth",
			lat1: 32.7767, lng1: -96.7970,
			lat2: 32.7555, lng2: -97.3308,
			expected: 31.0,
			delta:    1.0,
		},
		{
			name: "One degree of latitude",
			lat1: 32.0, lng1: -97.0,
			lat2: 33.0, lng2: -97.0,
			expected: 69.1,
			delta:    0.3,
		},
		{
			name: "Short block-scale hop",
			lat1: 32.7555, lng1: -97.3308,
			lat2: 32.7560, lng2: -97.3308,
			expected: 0.0345,
			delta:    0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Miles(Point(tt.lat1, tt.lng1), Point(tt.lat2, tt.lng2))
			assert.InDelta(t, tt.expected, d, tt.delta)
		})
	}
}

func TestMiles_Symmetric(t *testing.T) {
	a := Point(32.7555, -97.3308)
	b := Point(32.7767, -96.7970)
	assert.InDelta(t, Miles(a, b), Miles(b, a), 1e-9)
}
