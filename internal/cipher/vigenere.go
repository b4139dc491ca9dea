package cipher

import (
	"fmt"
	"strings"
)

// Direction selects whether Vigenere adds or subtracts the key shifts.
type Direction int

const (
	// Encrypt adds the keyword shifts.
	Encrypt Direction = iota
	// Decrypt subtracts them.
	Decrypt
)

func (d Direction) String() string {
	switch d {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Keyword is a validated Vigenère key: the shift for each letter of the
// original keyword, in order.
type Keyword struct {
	shifts []int
}

// ParseKeyword keeps only the ASCII letters of raw, case-insensitively, and
// maps each to its shift (a=0 ... z=25). It fails with ErrInvalidKey when no
// letter remains.
func ParseKeyword(raw string) (Keyword, error) {
	shifts := make([]int, 0, len(raw))
	for _, r := range strings.ToLower(raw) {
		if r >= 'a' && r <= 'z' {
			shifts = append(shifts, int(r-'a'))
		}
	}
	if len(shifts) == 0 {
		return Keyword{}, fmt.Errorf("%w: keyword %q has no letters", ErrInvalidKey, raw)
	}
	return Keyword{shifts: shifts}, nil
}

// Len returns the number of key positions.
func (k Keyword) Len() int {
	return len(k.shifts)
}

// String returns the normalized lowercase keyword.
func (k Keyword) String() string {
	var sb strings.Builder
	for _, s := range k.shifts {
		sb.WriteByte(byte('a' + s))
	}
	return sb.String()
}

// Apply runs the cipher over text. The key position advances only on ASCII
// letters; every other rune is copied through without consuming a key letter.
func (k Keyword) Apply(text string, dir Direction) string {
	if len(k.shifts) == 0 {
		return text
	}
	sign := 1
	if dir == Decrypt {
		sign = -1
	}
	var sb strings.Builder
	sb.Grow(len(text))
	idx := 0
	for _, r := range text {
		if !IsLetter(r) {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(ShiftRune(r, sign*k.shifts[idx%len(k.shifts)]))
		idx++
	}
	return sb.String()
}

// Vigenere parses keyword and applies it to text in the given direction.
func Vigenere(text, keyword string, dir Direction) (string, error) {
	k, err := ParseKeyword(keyword)
	if err != nil {
		return "", err
	}
	return k.Apply(text, dir), nil
}
