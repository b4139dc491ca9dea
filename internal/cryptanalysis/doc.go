// Package cryptanalysis recovers Caesar keys by brute force.
//
// Every shift of a bounded keyspace (1 through 23 by default) is tried; each
// candidate plaintext is scored by counting its tokens that appear in a
// reference word set, and the highest score wins. Ties go to the lowest
// shift. The package also ranks all candidates (Detector) and builds
// letter-frequency histograms of a text.
//
// All functions are pure: the word set is only read, and each candidate is
// computed independently, which is what makes RecoverParallel equivalent to
// Recover.
package cryptanalysis
