package cryptanalysis

import (
	"context"
	"sort"

	"github.com/RowanDark/cifra/internal/dictionary"
	"github.com/RowanDark/cifra/internal/textnorm"
)

// Ranking is a candidate together with how much of its text the dictionary
// recognised.
type Ranking struct {
	Candidate
	// Tokens is the number of word tokens in the candidate plaintext.
	Tokens int `json:"tokens"`
	// Confidence is Score / Tokens, 0.0 to 1.0
	Confidence float64 `json:"confidence"`
}

// Detector ranks every shift of a keyspace instead of returning only the
// winner.
type Detector struct {
	Keyspace Keyspace
	// MinConfidence drops rankings below this ratio from the result.
	MinConfidence float64
}

// NewDetector creates a detector over DefaultKeyspace that keeps every
// candidate.
func NewDetector() *Detector {
	return &Detector{Keyspace: DefaultKeyspace}
}

// Rank scores all candidates and returns them ordered by score (highest
// first), then by shift. Without a MinConfidence filter the first entry is
// always the candidate Recover picks.
func (d *Detector) Rank(ctx context.Context, ciphertext string, words dictionary.WordSet) ([]Ranking, error) {
	if err := d.Keyspace.Validate(); err != nil {
		return nil, err
	}

	rankings := make([]Ranking, 0, d.Keyspace.Size())
	for shift := d.Keyspace.Min; shift <= d.Keyspace.Max; shift++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := evaluate(ciphertext, shift, words)
		tokens := len(textnorm.Tokens(Normalize(c.Plaintext)))
		confidence := 0.0
		if tokens > 0 {
			confidence = float64(c.Score) / float64(tokens)
		}
		if confidence < d.MinConfidence {
			continue
		}
		rankings = append(rankings, Ranking{Candidate: c, Tokens: tokens, Confidence: confidence})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].better(rankings[j].Candidate)
	})

	if words.Empty() {
		return rankings, ErrEmptyDictionary
	}
	return rankings, nil
}
