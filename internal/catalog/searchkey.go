package catalog

import (
	"strings"
	"unicode"
)

// SearchKey normalizes an exercise name for catalog deduplication:
// case-folded, with punctuation dropped and whitespace runs collapsed to
// single spaces. "Bulgarian Split-Squat" and "bulgarian split squat"
// produce the same key.
func SearchKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
