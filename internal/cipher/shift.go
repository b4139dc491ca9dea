package cipher

// AlphabetSize is the number of letters in the Latin alphabet every cipher
// in this package rotates over.
const AlphabetSize = 26

// ShiftRune rotates an ASCII letter by amount positions, keeping its case.
// Any other rune, including accented letters, is returned unchanged.
// amount may be any integer; negative values rotate backwards.
func ShiftRune(r rune, amount int) rune {
	var base rune
	switch {
	case r >= 'A' && r <= 'Z':
		base = 'A'
	case r >= 'a' && r <= 'z':
		base = 'a'
	default:
		return r
	}
	return base + rune(mod(int(r-base)+amount, AlphabetSize))
}

// IsLetter reports whether r is an ASCII letter, the only runes the ciphers
// transform.
func IsLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// mod is the Euclidean remainder: the result is always in [0, n).
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
