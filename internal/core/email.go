package core

// email.go implements the email rule: strip spaces, clean the domain,
// repair near-miss domains against a known list, then apply one acceptance
// test to every cell of the column.

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultSimilarityThreshold is the minimum difflib ratio for a domain repair.
const DefaultSimilarityThreshold = 0.8

// emailPattern is the final acceptance test. Host labels carry letters,
// dots and hyphens only; the TLD has at least two letters.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z.\-]+\.[A-Za-z]{2,}$`)

// KnownDomains is an immutable ordered set of canonical email domains.
// It drives fuzzy repair only; unknown but well-formed domains are accepted.
type KnownDomains struct {
	list []string
	set  map[string]struct{}
}

// NewKnownDomains lowercases and de-duplicates domains, keeping first-seen order.
func NewKnownDomains(domains ...string) KnownDomains {
	k := KnownDomains{set: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if _, dup := k.set[d]; dup {
			continue
		}
		k.set[d] = struct{}{}
		k.list = append(k.list, d)
	}
	return k
}

// DefaultKnownDomains lists common consumer mail providers.
var DefaultKnownDomains = NewKnownDomains(
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"aol.com",
	"icloud.com",
	"live.com",
	"msn.com",
	"protonmail.com",
	"comcast.net",
	"verizon.net",
	"att.net",
	"me.com",
	"mail.com",
	"gmx.com",
	"yandex.com",
)

// Len returns the number of domains.
func (k KnownDomains) Len() int { return len(k.list) }

// List returns a copy of the domains in order.
func (k KnownDomains) List() []string {
	out := make([]string, len(k.list))
	copy(out, k.list)
	return out
}

// Contains reports exact membership.
func (k KnownDomains) Contains(domain string) bool {
	_, ok := k.set[domain]
	return ok
}

// Closest returns the known domain most similar to domain whose ratio is at
// least threshold. Ties go to the lexicographically greater candidate.
func (k KnownDomains) Closest(domain string, threshold float64) (string, bool) {
	target := strings.Split(domain, "")
	best, bestScore := "", -1.0
	for _, cand := range k.list {
		m := difflib.NewMatcher(strings.Split(cand, ""), target)
		if m.RealQuickRatio() < threshold || m.QuickRatio() < threshold {
			continue
		}
		score := m.Ratio()
		if score < threshold {
			continue
		}
		if score > bestScore || (score == bestScore && cand > best) {
			best, bestScore = cand, score
		}
	}
	return best, bestScore >= 0
}

// CheckEmail applies the email rule to one cell.
//
// Strings containing "@" are repaired first; every non-empty cell then
// faces the same acceptance test and is rejected (emptied) on failure.
// Cells that are already the empty string are left alone.
func CheckEmail(c Cell, domains KnownDomains, threshold float64) Outcome {
	s, isText := c.AsText()
	if isText && s == "" {
		return unchanged(c)
	}
	if !isText {
		// Nulls and numbers can never pass the acceptance test.
		return rejected(c)
	}

	candidate := s
	if strings.Contains(s, "@") {
		candidate = repairEmail(s, domains, threshold)
	}
	if !emailPattern.MatchString(candidate) {
		return rejected(c)
	}
	return accepted(c, candidate)
}

// repairEmail strips whitespace, cleans and lowercases the domain, and
// swaps in the closest known domain when one clears threshold.
func repairEmail(s string, domains KnownDomains, threshold float64) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	local, domain, _ := strings.Cut(s, "@")
	domain = strings.ToLower(strings.Map(func(r rune) rune {
		if isASCIIAlnum(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, domain))

	if !domains.Contains(domain) {
		if match, ok := domains.Closest(domain, threshold); ok {
			domain = match
		}
	}
	return local + "@" + domain
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// EmailRule returns the email pass for column.
func EmailRule(column string, domains KnownDomains, threshold float64) *ColumnRule {
	return &ColumnRule{
		name:   "email",
		column: column,
		check: func(c Cell) Outcome {
			return CheckEmail(c, domains, threshold)
		},
	}
}
