package cryptanalysis

import (
	"context"
	"sync"

	"github.com/RowanDark/cifra/internal/dictionary"
)

// RecoverParallel evaluates the keyspace on a pool of workers and merges the
// results by max-reduction with the same tie-break as RecoverRange, so both
// return the same candidate for every input. workers < 2 falls back to the
// sequential scan.
func RecoverParallel(ctx context.Context, ciphertext string, words dictionary.WordSet, ks Keyspace, workers int) (Candidate, error) {
	if err := ks.Validate(); err != nil {
		return Candidate{}, err
	}
	if workers < 2 {
		if err := ctx.Err(); err != nil {
			return Candidate{}, err
		}
		return RecoverRange(ciphertext, words, ks)
	}
	if workers > ks.Size() {
		workers = ks.Size()
	}

	shifts := make(chan int)
	results := make(chan Candidate, ks.Size())

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for shift := range shifts {
				results <- evaluate(ciphertext, shift, words)
			}
		}()
	}

	go func() {
		defer close(shifts)
		for shift := ks.Min; shift <= ks.Max; shift++ {
			select {
			case shifts <- shift:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var best Candidate
	seen := 0
	for c := range results {
		if seen == 0 || c.better(best) {
			best = c
		}
		seen++
	}

	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	if words.Empty() {
		return best, ErrEmptyDictionary
	}
	return best, nil
}
