// internal/sanitize/sanitize.go
package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	MaxRequestedAmount = 50000
	MaxRequestedDigits = 5

	MinNameLength = 3
	MaxNameLength = 100
)

var (
	nonDigits   = regexp.MustCompile(`[^0-9]`)
	lettersOnly = regexp.MustCompile(`^[\p{L}\p{Zs}\s]+$`)
)

// Digits strips every character that is not an ASCII digit.
func Digits(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// Name returns raw when it is empty or made only of Unicode letters and
// spaces. Any other input is rejected and prev is returned unchanged.
func Name(prev, raw string) string {
	if raw == "" || IsName(raw) {
		return raw
	}
	return prev
}

// IsName reports whether s is non-empty and made only of Unicode letters
// and spaces, including non-breaking and other Unicode space separators.
func IsName(s string) bool {
	return lettersOnly.MatchString(s)
}

// RequestedAmount keeps the digits of raw and returns the canonical decimal
// string of their value, clamped to MaxRequestedAmount.
func RequestedAmount(raw string) string {
	digits := strings.TrimLeft(Digits(raw), "0")
	if digits == "" {
		return "0"
	}
	// Anything longer than five significant digits is above the cap and
	// may not fit in an int.
	if len(digits) > MaxRequestedDigits {
		return strconv.Itoa(MaxRequestedAmount)
	}

	value, err := strconv.Atoi(digits)
	if err != nil || value > MaxRequestedAmount {
		return strconv.Itoa(MaxRequestedAmount)
	}
	return strconv.Itoa(value)
}

// AmountValue parses a canonical requested amount. Non-canonical input is
// sanitized first.
func AmountValue(amount string) int {
	value, _ := strconv.Atoi(RequestedAmount(amount))
	return value
}
