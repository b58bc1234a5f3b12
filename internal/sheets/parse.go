package sheets

import (
	"strconv"
	"strings"
	"time"
)

// Cells arrive as display strings. Numbers may carry decimal commas, unit
// suffixes ("12 pcs / dus") or currency noise, so parsing takes the leading
// numeric prefix and lets the caller fall back to a documented default.

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	dot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !dot {
			dot = true
			end++
			continue
		}
		break
	}
	if end == start {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// floatOr returns the parsed value or def for blank/garbage cells.
func floatOr(s string, def float64) float64 {
	if f, ok := parseLeadingFloat(s); ok {
		return f
	}
	return def
}

// conversionRate floors invalid or non-positive values to 1.
func conversionRate(s string) int {
	n, ok := parseLeadingInt(s)
	if !ok || n <= 0 {
		return 1
	}
	return n
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"01-02-06",
	"1/2/06",
	"01/02/06",
	"1/2/2006",
	"02/01/2006",
	"2 Jan 2006",
}

// parseDate normalizes a date cell to YYYY-MM-DD; absent or unparseable
// values default to today.
func parseDate(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return now.Format("2006-01-02")
}
