// Package phone normalizes caller numbers into the canonical +<country><subscriber> form.
package phone

import (
	"strings"

	"github.com/samber/lo"
)

const trunkPrefix = "0"

var stripper = strings.NewReplacer(" ", "", "\t", "", "(", "", ")", "", "-", "")

// Normalize rewrites raw into +<countryCode><subscriber>.
func Normalize(raw, countryCode string) string {
	s := stripper.Replace(strings.TrimSpace(raw))
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "+"):
		return s
	case strings.HasPrefix(s, trunkPrefix):
		return "+" + countryCode + strings.TrimPrefix(s, trunkPrefix)
	case strings.HasPrefix(s, countryCode):
		return "+" + s
	default:
		return "+" + countryCode + s
	}
}

// Local returns the national trunk form (0712...) of a number, or "" if the
// number does not belong to countryCode.
func Local(raw, countryCode string) string {
	n := Normalize(raw, countryCode)
	intl := "+" + countryCode
	if !strings.HasPrefix(n, intl) {
		return ""
	}
	return trunkPrefix + strings.TrimPrefix(n, intl)
}

// Variants lists the forms a number may be stored under, in lookup order:
// exact input, +international, international without "+", local.
func Variants(raw, countryCode string) []string {
	normalized := Normalize(raw, countryCode)
	forms := []string{
		strings.TrimSpace(raw),
		normalized,
		strings.TrimPrefix(normalized, "+"),
		Local(raw, countryCode),
	}
	return lo.Uniq(lo.Compact(forms))
}
