package money

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid money amount")

// ParseAmount converts a decimal string like "150000.50" to cents as int64.
// At most two decimal places are accepted; anything else is a validation
// problem, not a rounding opportunity.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	cents := int64(0)
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, ErrInvalidAmount
			}
			d := int64(r - '0')
			if cents > (1<<63-1-d)/10 {
				return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
			}
			cents = cents*10 + d
		}
	}

	if neg {
		cents = -cents
	}
	return cents, nil
}

// ParsePositiveAmount is ParseAmount restricted to amounts strictly above zero.
func ParsePositiveAmount(s string) (int64, error) {
	cents, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return cents, nil
}

// FormatCents renders cents as a plain decimal string without float math.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
