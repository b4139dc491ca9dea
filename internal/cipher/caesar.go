package cipher

import "strings"

// Caesar shifts every ASCII letter of text by key. Decryption is Caesar
// with -key. Any integer key is accepted and reduced modulo 26.
func Caesar(text string, key int) string {
	shift := mod(key, AlphabetSize)
	if shift == 0 {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		sb.WriteRune(ShiftRune(r, shift))
	}
	return sb.String()
}

// CaesarDecrypt undoes Caesar(text, key).
func CaesarDecrypt(text string, key int) string {
	return Caesar(text, -key)
}
