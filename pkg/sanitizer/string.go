package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// RemoveSpaces drops every whitespace rune, not just the outer ones.
func RemoveSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeUpper is used for identifiers guests tend to type in mixed case,
// such as car plates and passport numbers.
func NormalizeUpper(s string) string {
	return strings.ToUpper(TrimAndNormalize(s))
}
