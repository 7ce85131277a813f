package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims surrounding whitespace and collapses internal
// whitespace runs to a single space.
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

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

var titlePipeline = Pipeline{stripControl, TrimAndNormalize}

// NormalizeTitle cleans a reservation title for storage and comparison.
func NormalizeTitle(title string) string {
	return titlePipeline.Apply(title)
}

// NormalizeDescription cleans a reservation description; newlines survive as
// single spaces, which is acceptable for the short descriptions we store.
func NormalizeDescription(description string) string {
	return titlePipeline.Apply(description)
}
