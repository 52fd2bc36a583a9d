package parser

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// splitWords segments camel-case text. A boundary falls before an upper-case
// letter that follows a lower-case letter or digit, and before the last
// upper-case letter of an acronym that is followed by a lower-case letter:
//
//	LastnameOrFirstname → Lastname Or Firstname
//	EmailIDLike         → Email ID Like
func splitWords(s string) []string {
	runes := []rune(s)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			continue
		}
		prev := runes[i-1]
		acronymEnd := unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if unicode.IsLower(prev) || unicode.IsDigit(prev) || acronymEnd {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

// normalize returns the NFC form of an identifier so that composed and
// decomposed spellings of the same property name parse identically.
func normalize(identifier string) string {
	return norm.NFC.String(identifier)
}

// validIdentifierText reports whether s holds only letters and digits.
func validIdentifierText(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// startsUpper reports whether s begins with an upper-case letter.
func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
