package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSoldDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{"Slash date four digit year", "3/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"Slash date two digit year 20xx", "3/15/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"Slash date two digit year 19xx", "7/4/98", time.Date(1998, 7, 4, 0, 0, 0, 0, time.UTC), true},
		{"Two digit year pivot low", "1/1/49", time.Date(2049, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"Two digit year pivot high", "1/1/50", time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"ISO date", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"Month name date", "Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"Surrounding whitespace", "  6/1/2023 ", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"Empty", "", time.Time{}, false},
		{"Garbage", "sometime last year", time.Time{}, false},
		{"Impossible month", "13/1/2024", time.Time{}, false},
		{"Impossible day", "2/45/2024", time.Time{}, false},
		{"Non numeric parts", "a/b/c", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := parseSoldDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, parsed)
			}
		})
	}
}

func TestMonthsSince(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// 30.44 days back is exactly one mean month.
	oneMonthAgo := now.Add(-time.Duration(daysPerMonth * 24 * float64(time.Hour)))
	assert.InDelta(t, 1.0, monthsSince(oneMonthAgo, now), 1e-6)

	// A year back is a little over 12 mean months.
	yearAgo := now.AddDate(-1, 0, 0)
	assert.InDelta(t, 12.0, monthsSince(yearAgo, now), 0.05)
}
