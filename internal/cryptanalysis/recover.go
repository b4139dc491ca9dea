package cryptanalysis

import (
	"fmt"

	"github.com/RowanDark/cifra/internal/cipher"
	"github.com/RowanDark/cifra/internal/dictionary"
)

// Keyspace is an inclusive range of Caesar shifts to try.
type Keyspace struct {
	Min int
	Max int
}

// DefaultKeyspace skips the no-op shift 0 and stops at 23.
var DefaultKeyspace = Keyspace{Min: 1, Max: 23}

// Size returns the number of shifts in the keyspace.
func (k Keyspace) Size() int {
	return k.Max - k.Min + 1
}

// Validate checks 0 <= Min <= Max <= 25.
func (k Keyspace) Validate() error {
	if k.Min < 0 || k.Max >= cipher.AlphabetSize || k.Min > k.Max {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidKeyspace, k.Min, k.Max)
	}
	return nil
}

// Candidate is one decryption attempt: the shift tried, the text it produced
// and that text's dictionary score.
type Candidate struct {
	Shift     int    `json:"shift"`
	Plaintext string `json:"plaintext"`
	Score     int    `json:"score"`
}

// better reports whether c beats best. Strictly greater wins; equal scores
// keep the earlier (lower) shift.
func (c Candidate) better(best Candidate) bool {
	if c.Score != best.Score {
		return c.Score > best.Score
	}
	return c.Shift < best.Shift
}

func evaluate(ciphertext string, shift int, words dictionary.WordSet) Candidate {
	plaintext := cipher.CaesarDecrypt(ciphertext, shift)
	return Candidate{
		Shift:     shift,
		Plaintext: plaintext,
		Score:     Score(plaintext, words),
	}
}

// Recover tries every shift of DefaultKeyspace and returns the best
// candidate. With an empty word set it still returns the shift-1 candidate
// with score 0, together with ErrEmptyDictionary.
func Recover(ciphertext string, words dictionary.WordSet) (Candidate, error) {
	return RecoverRange(ciphertext, words, DefaultKeyspace)
}

// RecoverRange is Recover over an explicit keyspace. The whole keyspace is
// always scanned in ascending order.
func RecoverRange(ciphertext string, words dictionary.WordSet, ks Keyspace) (Candidate, error) {
	if err := ks.Validate(); err != nil {
		return Candidate{}, err
	}

	best := Candidate{Score: -1}
	for shift := ks.Min; shift <= ks.Max; shift++ {
		c := evaluate(ciphertext, shift, words)
		if c.Score > best.Score {
			best = c
		}
	}

	if words.Empty() {
		return best, ErrEmptyDictionary
	}
	return best, nil
}
