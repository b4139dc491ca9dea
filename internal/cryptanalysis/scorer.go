package cryptanalysis

import (
	"github.com/RowanDark/cifra/internal/dictionary"
	"github.com/RowanDark/cifra/internal/textnorm"
)

// Normalize folds text to lower case and strips diacritics.
func Normalize(text string) string {
	return textnorm.Fold(text)
}

// Score counts the tokens of text that are members of words. Text is folded
// first, then split into maximal runs of letters, digits and underscores.
func Score(text string, words dictionary.WordSet) int {
	if words.Empty() {
		return 0
	}
	score := 0
	for _, token := range textnorm.Tokens(Normalize(text)) {
		if words.Contains(token) {
			score++
		}
	}
	return score
}
