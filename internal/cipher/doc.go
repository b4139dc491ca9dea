// Package cipher implements the classical substitution ciphers (Caesar and
// Vigenère) and the operation registry, pipelines and recipes built on them.
//
// # Overview
//
// Every cipher is built on one primitive, ShiftRune, which rotates an ASCII
// letter modulo 26 and leaves every other rune alone. On top of it:
//   - Caesar / CaesarDecrypt apply one fixed shift to a whole text
//   - Vigenere applies the shifts of a repeating keyword; the key position
//     advances only on letters, so punctuation never changes the alignment
//
// # Quick Start
//
//	ct := cipher.Caesar("Be Wish", 3)      // "Eh Zlvk"
//	pt := cipher.CaesarDecrypt(ct, 3)      // "Be Wish"
//
//	ct, err := cipher.Vigenere("Attack at dawn", "LEMON", cipher.Encrypt)
//	// ct: "Lxfopv ef rnhr"
//
// A keyword with no letters fails with ErrInvalidKey.
//
// # Operations and Pipelines
//
// The default registry holds caesar_encrypt, caesar_decrypt,
// vigenere_encrypt, vigenere_decrypt and rot13. Pipelines chain them:
//
//	pipeline := &cipher.Pipeline{
//	    Operations: []cipher.OperationConfig{
//	        {Name: "caesar_encrypt", Parameters: cipher.Params{"key": 3}},
//	        {Name: "vigenere_encrypt", Parameters: cipher.Params{"keyword": "lemon"}},
//	    },
//	    Reversible: true,
//	}
//	encrypted, _ := pipeline.Execute(ctx, "attack at dawn")
//	reversed, _ := pipeline.Reverse()
//	decrypted, _ := reversed.Execute(ctx, encrypted)
//
// # Recipes
//
// RecipeManager saves named pipelines as JSON files. Files are validated
// against an embedded JSON Schema when loaded and saved, and a recipe can be
// exported as YAML.
//
// # Thread Safety
//
// Registry and RecipeManager use internal locking. Operations are stateless.
package cipher
