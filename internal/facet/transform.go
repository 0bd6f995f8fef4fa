package facet

import (
	"strings"
	"unicode"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// ApplyTextTransform applies the named casing transform to a facet value.
// The transform name is matched case-insensitively; unknown or empty names
// (and the explicit "none") pass the value through unchanged, as does an
// empty value.
func ApplyTextTransform(value, transform string) string {
	if value == "" {
		return value
	}

	switch strings.ToLower(transform) {
	case domain.TransformCapitalize:
		return capitalize(value)
	case domain.TransformUppercase:
		return strings.ToUpper(value)
	case domain.TransformLowercase:
		return strings.ToLower(value)
	case domain.TransformTitle:
		parts := strings.Split(value, " ")
		for i, p := range parts {
			parts[i] = capitalize(p)
		}
		return strings.Join(parts, " ")
	default:
		return value
	}
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}
