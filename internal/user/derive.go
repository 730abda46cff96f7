// AngelaMos | 2026
// derive.go

package user

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Derived profile fields are computed from stored columns on demand,
// never persisted on the users row itself.

const (
	PrefixMs  = "Ms."
	PrefixMrs = "Mrs."
)

// FullName joins the capitalized first name, the middle initial when a
// middle name is present, and the capitalized last name.
func FullName(first, middle, last string) string {
	parts := make([]string, 0, 3)

	if first != "" {
		parts = append(parts, capitalize(first))
	}
	if mi := MiddleInitial(middle); mi != "" {
		parts = append(parts, mi)
	}
	if last != "" {
		parts = append(parts, capitalize(last))
	}

	return strings.Join(parts, " ")
}

// MiddleInitial returns the capitalized first letter of the middle name
// followed by a period, or "" when there is no middle name.
func MiddleInitial(middle string) string {
	if middle == "" {
		return ""
	}

	r, _ := utf8.DecodeRuneInString(middle)
	return string(unicode.ToUpper(r)) + "."
}

// Gender is inferred solely from the name prefix: "Ms." and "Mrs." map to
// Female, any other non-empty prefix maps to Male, no prefix means unknown.
func Gender(prefix string) string {
	if prefix == "" {
		return ""
	}

	if prefix == PrefixMs || prefix == PrefixMrs {
		return "Female"
	}

	return "Male"
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
