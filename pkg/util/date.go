package util

import (
	"time"
)

var transTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	// legacy clients send day-first timestamps
	"02-01-2006 15:04",
	"02-01-2006 15:04:05",
}

var dobLayouts = []string{
	"02-01-2006",
	"2006-01-02",
}

// ParseTransTime parses a transaction timestamp. ISO order is tried first,
// then the legacy day-first order. Returns (t, true) if any layout matched.
func ParseTransTime(s string) (time.Time, bool) {
	return parseAny(s, transTimeLayouts)
}

// ParseDOB parses a date of birth, day-first order preferred.
func ParseDOB(s string) (time.Time, bool) {
	return parseAny(s, dobLayouts)
}

func parseAny(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// YearsBetween returns whole years elapsed from a to b, day-count based to
// match the training pipeline (days // 365).
func YearsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	days := int(b.Sub(a).Hours() / 24)
	return days / 365
}
