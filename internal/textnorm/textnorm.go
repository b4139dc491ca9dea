// Package textnorm folds text into the canonical form used for dictionary
// lookups: lower case, with diacritics stripped from accented letters.
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks hands out chains that decompose, drop combining marks and
// recompose whatever is left. A chain keeps internal buffers, so each one
// serves a single Fold at a time.
var stripMarks = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// Fold lower-cases s and strips diacritics ("Ação" -> "acao"). It is safe
// for concurrent use.
func Fold(s string) string {
	if s == "" {
		return s
	}
	t := stripMarks.Get().(transform.Transformer)
	defer stripMarks.Put(t)

	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// IsWordRune reports whether r belongs to a word token: a letter, a digit or
// an underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokens splits s into maximal runs of word runes. Everything else is a
// separator and never appears in a token.
func Tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !IsWordRune(r) })
}
