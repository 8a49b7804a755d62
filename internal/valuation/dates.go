package valuation

import (
	"strconv"
	"strings"
	"time"
)

// daysPerMonth is the mean length of a calendar month.
const daysPerMonth = 30.44

var soldDateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseSoldDate parses the loosely formatted sale dates that come out of
// pasted listing text. Supported forms are M/D/YYYY, M/D/YY (two-digit
// years below 50 are 20xx, the rest 19xx), ISO dates, and "Jan 2, 2006".
// The second return is false when the string cannot be parsed; callers
// degrade to the neutral recency score rather than erroring.
func parseSoldDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if parts := strings.Split(s, "/"); len(parts) == 3 {
		month, errM := strconv.Atoi(strings.TrimSpace(parts[0]))
		day, errD := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errM == nil && errD == nil && errY == nil {
			if len(strings.TrimSpace(parts[2])) <= 2 {
				if year < 50 {
					year += 2000
				} else {
					year += 1900
				}
			}
			if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
				return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
			}
		}
		return time.Time{}, false
	}

	for _, layout := range soldDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// monthsSince returns the number of mean months elapsed between t and now.
func monthsSince(t, now time.Time) float64 {
	return now.Sub(t).Hours() / 24 / daysPerMonth
}
