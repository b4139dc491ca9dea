package cryptanalysis

import "errors"

// ErrEmptyDictionary is returned alongside the (degenerate) result of a
// recovery run over an empty word set: every candidate scores zero and the
// first shift wins by tie-break. Callers should treat it as a warning.
var ErrEmptyDictionary = errors.New("cryptanalysis: empty dictionary, every candidate scores 0")

// ErrInvalidKeyspace is returned for a keyspace with Min > Max or bounds
// outside 0..25.
var ErrInvalidKeyspace = errors.New("cryptanalysis: invalid keyspace")
