// Package dictionary holds the reference word set used to score candidate
// plaintexts, and loads it from word lists.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/RowanDark/cifra/internal/textnorm"
)

// ErrNotFound is returned by LoadFile when the word list does not exist.
var ErrNotFound = errors.New("dictionary: word list not found")

// WordSet is an immutable set of folded (lower-case, accent-free) words.
// The zero value is an empty set.
type WordSet struct {
	words map[string]struct{}
}

// New builds a WordSet from words. Each word is trimmed and folded; blanks
// are skipped and duplicates collapse.
func New(words ...string) WordSet {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = textnorm.Fold(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return WordSet{words: set}
}

// Contains reports whether token is in the set. The token must already be
// folded; the scorer folds whole texts before tokenizing.
func (s WordSet) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of distinct words.
func (s WordSet) Len() int {
	return len(s.words)
}

// Empty reports whether the set has no words.
func (s WordSet) Empty() bool {
	return len(s.words) == 0
}

// Words returns the words in sorted order.
func (s WordSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Load reads one word per line from r.
func Load(r io.Reader) (WordSet, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return WordSet{}, fmt.Errorf("read word list: %w", err)
	}
	return New(words...), nil
}

// LoadFile reads a word list from path. A missing file yields an error
// wrapping ErrNotFound.
func LoadFile(path string) (WordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return WordSet{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return WordSet{}, fmt.Errorf("open word list %s: %w", path, err)
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return WordSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}
