package chunker

import (
	"unicode"
	"unicode/utf8"
)

// RuneLen is the length measure used for every bound.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// HasContent reports whether s holds at least one letter or digit, i.e. it
// is more than punctuation and whitespace.
func HasContent(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
