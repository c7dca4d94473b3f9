package grader

import (
	"strings"
	"unicode"
)

// stripped holds the punctuation and bracket characters removed before
// comparison, Latin and full-width.
var stripped = map[rune]struct{}{
	'.': {}, ',': {}, '!': {}, '?': {}, '(': {}, ')': {}, '[': {}, ']': {},
	'{': {}, '}': {}, '\'': {}, '"': {}, '-': {}, '_': {}, '~': {}, ':': {}, ';': {},
	'。': {}, '、': {}, '！': {}, '？': {}, '（': {}, '）': {}, '「': {}, '」': {},
	'『': {}, '』': {}, '【': {}, '】': {}, '～': {}, '・': {}, '：': {},
}

// Normalize lowercases s and drops whitespace and punctuation so that answers
// differing only in spacing or punctuation compare equal.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if _, ok := stripped[r]; ok {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// SplitAnswers splits a comma separated answer field. Both the ASCII and the
// full-width comma separate answers. Segments are returned untrimmed.
func SplitAnswers(field string) []string {
	return strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == '，'
	})
}
