package usecase

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Lenient numeric prefixes: "12.5g" reads as 12.5, "abc" as nothing
var (
	leadingFloatRegex = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)
	leadingIntRegex   = regexp.MustCompile(`^[+-]?\d+`)
)

// parseLeadingFloat reads the longest numeric prefix of s. ok is false when
// there is none or the value is not finite.
func parseLeadingFloat(s string) (float64, bool) {
	match := leadingFloatRegex.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// floatOrZero is parseLeadingFloat collapsing failures to 0
func floatOrZero(s string) float64 {
	v, _ := parseLeadingFloat(s)
	return v
}

// parseLeadingInt reads the integer prefix of s
func parseLeadingInt(s string) (int, bool) {
	match := leadingIntRegex.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, false
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return v, true
}

// rawToFloat reads a JSON value as a number: numbers directly, strings by
// numeric prefix, everything else as 0.
func rawToFloat(raw json.RawMessage) float64 {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return floatOrZero(s)
	}
	return 0
}

// formatNumber renders a float the shortest way that round-trips
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
