// ABOUTME: ECB period string parsing and date range helpers
// ABOUTME: Handles daily, monthly, and annual period formats

package ecb

import (
	"fmt"
	"time"
)

// periodFormats are tried in order. ECB series report daily ("2024-01-15"),
// monthly ("2024-01"), or annual ("2024") periods.
var periodFormats = []string{"2006-01-02", "2006-01", "2006"}

// ParsePeriod converts an ECB period string into a UTC time at the start
// of the period.
func ParsePeriod(period string) (time.Time, error) {
	for _, layout := range periodFormats {
		if t, err := time.Parse(layout, period); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized period %q", period)
}

// DefaultRange returns inclusive start and end dates covering the trailing
// n months, in API date format.
func DefaultRange(n int) (start, end string) {
	now := time.Now().UTC()
	return now.AddDate(0, -n, 0).Format("2006-01-02"), now.Format("2006-01-02")
}
