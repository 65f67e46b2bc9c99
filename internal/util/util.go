package util

import (
	"math"
	"strings"
	"time"
)

// Contains checks if a slice contains a specific string
func Contains(slice []string, val string) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

// Round Method to round to 2 decimals
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Seconds returns d in seconds rounded to 2 decimals.
func Seconds(d time.Duration) float64 {
	return Round(d.Seconds())
}

// Truncate shortens s to its first line and at most n runes, marking the cut
// with an ellipsis.
func Truncate(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "…"
	}
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
