package util

import (
	"regexp"
	"strconv"
	"strings"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// ExtractYear returns the first run of four digits in s once commas are removed,
// e.g. "Fall 2,023" -> 2023, "2022-23" -> 2022.
func ExtractYear(s string) (int, bool) {
	m := yearPattern.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}
