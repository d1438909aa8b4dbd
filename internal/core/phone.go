package core

import "strings"

// Accepted phone lengths, in digits.
const (
	MinPhoneDigits = 6
	MaxPhoneDigits = 16
)

// CheckPhone applies the phone rule to one cell.
//
// Numbers are rendered without exponent first, then every non-digit is
// dropped. A leading "+" is discarded like any other formatting.
func CheckPhone(c Cell) Outcome {
	if c.Kind == KindNull {
		return rejected(c)
	}
	s := c.String()
	if c.Kind == KindString && s == "" {
		return unchanged(c)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	if !validPhone(digits) {
		return rejected(c)
	}
	return accepted(c, digits)
}

func validPhone(s string) bool {
	if len(s) < MinPhoneDigits || len(s) > MaxPhoneDigits {
		return false
	}
	// Digits only; a "+" prefix counts as a non-digit.
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PhoneRule returns the phone pass for column.
func PhoneRule(column string) *ColumnRule {
	return &ColumnRule{name: "phone", column: column, check: CheckPhone}
}
