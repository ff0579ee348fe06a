// Package identity canonicalizes the raw identity fields visitors submit so
// that lookups compare like with like. All functions are pure and total:
// malformed input produces a best-effort canonical form, never an error.
package identity

import (
	"regexp"
	"strings"
)

// Phone number conventions for the event's home region (Brazil / Rio):
// numbers are stored as a bare digit sequence with the country code prefix.
const (
	countryCode = "55"
	areaCode    = "21"
	// A full local number with area code and mobile ninth digit.
	bareLocalLength = 11
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone canonicalizes a raw phone string to a digit sequence with
// the country code prefix. Empty input yields the empty string. The result
// can be ambiguous for short or foreign numbers; that is an accepted
// tradeoff, exact-match lookups simply miss in that case.
func NormalizePhone(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, countryCode) {
		return digits
	}
	if strings.HasPrefix(digits, areaCode) || len(digits) == bareLocalLength {
		return countryCode + digits
	}
	return digits
}

// NormalizeEmail lowercases and trims a raw email. Empty input yields the
// empty string.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Phone-number-like substrings in free text: 10 to 14 digits, optionally
// prefixed with +. Matches how hosts paste numbers into chat messages.
var phonePattern = regexp.MustCompile(`\+?\d{10,14}`)

// ExtractPhoneNumbers pulls phone-number-like substrings out of free text,
// normalized and deduplicated in order of first appearance. Zero matches
// returns an empty slice, not an error.
func ExtractPhoneNumbers(text string) []string {
	matches := phonePattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		normalized := NormalizePhone(m)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
