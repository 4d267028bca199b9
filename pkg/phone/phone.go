// Package phone normalizes Uzbek phone numbers as the user types them.
package phone

import "strings"

// countryPrefix is assumed for every number; input without it gets it
// prepended before grouping.
const countryPrefix = "998"

// maxDigits is the full national number including the country prefix.
const maxDigits = 12

// Format normalizes raw input into the canonical `+998 XX XXX XX XX` shape.
// Non-digit characters are dropped, the country prefix is forced, digits past
// the twelfth are discarded, and groups appear progressively as digits
// accumulate. Pure: the output depends only on the digit sequence of the
// input, so re-formatting a previously formatted value is stable.
func Format(raw string) string {
	digits := strip(raw)
	if !strings.HasPrefix(digits, countryPrefix) {
		digits = countryPrefix + digits
	}
	if len(digits) > maxDigits {
		digits = digits[:maxDigits]
	}

	var b strings.Builder
	b.WriteString("+" + countryPrefix)
	for _, g := range [][2]int{{3, 5}, {5, 8}, {8, 10}, {10, 12}} {
		if len(digits) <= g[0] {
			break
		}
		b.WriteByte(' ')
		end := min(g[1], len(digits))
		b.WriteString(digits[g[0]:end])
	}
	return b.String()
}

func strip(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
