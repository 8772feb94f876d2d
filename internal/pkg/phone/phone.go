// Package phone canonicalizes contact numbers for lookups: all stored phone
// columns and all comparisons use the normalized form.
package phone

import "strings"

// Normalize reduces an arbitrarily formatted phone string to its comparable
// canonical form: digits only, with the single leading country-code digit
// stripped when present. Normalize is idempotent.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// "+1 555 123 4567" and "5551234567" must compare equal.
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// LikePattern returns a SQL LIKE pattern matching a stored number regardless
// of a retained country-code prefix.
func LikePattern(raw string) string {
	return "%" + Normalize(raw)
}
