package alphavantage

import (
	"strconv"
	"strings"
)

// parseFloat64 converts Alpha Vantage numeric strings. The API writes absent
// values as "None", "-", "null" or the empty string, and percentages with a
// trailing "%"; all of those and any other unparseable input collapse to 0.
func parseFloat64(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "null" || s == "-" {
		return 0
	}
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseFloat64Ptr is parseFloat64 for fields where 0 is a meaningful value,
// so absence must stay distinguishable. Absent or unparseable input yields
// nil.
func parseFloat64Ptr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "null" || s == "-" {
		return nil
	}
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseInt64 converts whole-unit amounts. Large values arrive in scientific
// notation ("1.5E10") so it parses as float and truncates.
func parseInt64(s string) int64 {
	return int64(parseFloat64(s))
}
