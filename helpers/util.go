package helpers

import (
	"strconv"
	"strings"
	"unicode"
)

// DigitsOnly strips every non-digit rune from s. Source sites render counts
// and prices with thousands separators, currency marks and surrounding text.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseIntDefault parses the digits of s as an integer, returning def when
// s contains no digits or the digits overflow.
func ParseIntDefault(s string, def int64) int64 {
	digits := DigitsOnly(s)
	if digits == "" {
		return def
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return def
	}
	return n
}
