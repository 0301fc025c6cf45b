package util

import (
	"strconv"
	"strings"
)

// ParseFloat parses a spreadsheet-style numeric cell. Thousands separators and a
// trailing percent sign are ignored. Empty, "nan" and non-numeric cells report false.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "n/a", "-":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
