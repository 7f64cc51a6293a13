package checkout

import (
	"strconv"
	"strings"
)

// Input transforms applied as the user types. They normalize the raw input
// before validation; validation itself never mutates values.

// FormatCardNumber strips all non-digits and re-inserts the four-digit
// grouping, truncated to 19 characters (16 digits plus 3 separators).
func FormatCardNumber(raw string) string {
	digits := digitsOnly(raw)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	formatted := b.String()
	if len(formatted) > 19 {
		formatted = formatted[:19]
	}
	return formatted
}

// ClampExpiryMonth keeps at most two digits and clamps complete out-of-range
// input into 01..12: a typed "00" becomes "01", anything over 12 becomes "12".
func ClampExpiryMonth(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 2 {
		digits = digits[:2]
	}
	if len(digits) < 2 {
		return digits
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}
	switch {
	case n < 1:
		return "01"
	case n > 12:
		return "12"
	}
	return digits
}

// FormatExpiryYear keeps at most two digits. No century inference.
func FormatExpiryYear(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 2 {
		digits = digits[:2]
	}
	return digits
}

// FormatCVC keeps at most four digits.
func FormatCVC(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
