package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// namePunctuation is rejected outright if any of it survives cleaning.
const namePunctuation = "~!@#$%^&*()_+=[]}{|\\:;,.<>?"

// CheckName applies the name rule to one cell.
//
// Letters from any script and whitespace are kept; everything else is
// dropped. The result is title-cased per whitespace-delimited token.
// Null, numeric and cells left empty after cleaning are rejected.
func CheckName(c Cell) Outcome {
	s, isText := c.AsText()
	if !isText {
		return rejected(c)
	}
	if s == "" {
		return unchanged(c)
	}

	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || unicode.IsNumber(r) {
			return -1
		}
		return r
	}, keepLetters(norm.NFC.String(s))))

	if !validName(cleaned) {
		return rejected(c)
	}
	return accepted(c, titleCase(cleaned))
}

// keepLetters drops everything but letters and whitespace.
func keepLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsFunc(s, unicode.IsDigit) {
		return false
	}
	return !strings.ContainsAny(s, namePunctuation)
}

// titleCase uppercases the first letter of each token and lowercases the rest.
// Lowercasing can emit combining marks ("İ" becomes "i" plus U+0307), so
// the result is recomposed and filtered again.
// A fresh Caser per call; cases.Caser is not safe for concurrent use.
func titleCase(s string) string {
	return keepLetters(norm.NFC.String(cases.Title(language.Und).String(s)))
}

// NameRule returns the name pass for column.
func NameRule(column string) *ColumnRule {
	return &ColumnRule{name: "name", column: column, check: CheckName}
}
