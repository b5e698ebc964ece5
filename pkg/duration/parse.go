// Package duration provides human-friendly duration parsing and day-granular formatting.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Common duration constants for human-friendly units.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day  // Approximate
	Year  = 365 * Day // Approximate
)

// unitMultipliers maps human-friendly unit suffixes to their duration values.
var unitMultipliers = map[string]time.Duration{
	"d": Day,
	"w": Week,
	"M": Month, // Capital M for months to distinguish from minutes
	"y": Year,
}

// durationPattern matches duration components like "1y", "6M", "2w", "3d".
var durationPattern = regexp.MustCompile(`(\d+)([ywMd])`)

// Parse extends time.ParseDuration to support human-friendly units:
//   - d (days) = 24h
//   - w (weeks) = 7d
//   - M (months) = 30d (approximate)
//   - y (years) = 365d (approximate)
//
// Standard Go duration units (ns, us, ms, s, m, h) are also supported.
// Compound durations like "1y6M" or "2w3d" or "1d12h" work as expected.
//
// Examples:
//
//	Parse("30d")     // 30 days
//	Parse("2w")      // 14 days
//	Parse("1y6M")    // 1 year and 6 months
//	Parse("24h")     // standard Go duration
//	Parse("0")       // zero duration
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if s == "0" {
		return 0, nil
	}

	if !containsHumanUnits(s) {
		// Fall back to standard Go parsing
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w (supported units: ns, us, ms, s, m, h, d, w, M, y)", s, err)
		}
		return d, nil
	}

	return parseHumanDuration(s)
}

// Days converts a duration to whole days, truncating toward zero.
func Days(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / Day)
}

// Format renders a duration at day granularity, e.g. "0d", "42d", "400d".
// Tag ages below one day all render as "0d".
func Format(d time.Duration) string {
	return strconv.Itoa(Days(d)) + "d"
}

// containsHumanUnits checks if the string contains any human-friendly unit suffixes.
func containsHumanUnits(s string) bool {
	for unit := range unitMultipliers {
		if strings.Contains(s, unit) {
			return true
		}
	}
	return false
}

// parseHumanDuration parses a duration string containing human-friendly units.
func parseHumanDuration(s string) (time.Duration, error) {
	var total time.Duration
	remaining := s

	matches := durationPattern.FindAllStringSubmatch(remaining, -1)
	if len(matches) > 0 {
		for _, match := range matches {
			value, err := strconv.ParseInt(match[1], 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration value %q in %q", match[1], s)
			}

			unit := match[2]
			multiplier, ok := unitMultipliers[unit]
			if !ok {
				return 0, fmt.Errorf("unknown duration unit %q in %q", unit, s)
			}

			total += time.Duration(value) * multiplier
		}

		remaining = durationPattern.ReplaceAllString(remaining, "")
	}

	// Anything left over must be a standard Go duration ("1d12h" leaves "12h")
	remaining = strings.TrimSpace(remaining)
	if remaining != "" {
		d, err := time.ParseDuration(remaining)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w (supported units: ns, us, ms, s, m, h, d, w, M, y)", s, err)
		}
		total += d
	}

	return total, nil
}
