// Package output names and writes the files produced by cipher runs.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	encryptedSuffix = "_cifrado.txt"
	decryptedSuffix = "_decifrado.txt"
	vigenereSuffix  = "_vigenere.txt"
)

// EncryptedName returns the Caesar output path for input: the extension is
// replaced by "_cifrado.txt".
func EncryptedName(input string) string {
	return stem(input) + encryptedSuffix
}

// VigenereName returns the Vigenère output path for input.
func VigenereName(input string) string {
	return stem(input) + vigenereSuffix
}

// DecryptedName returns the output path for a decrypted or cracked file.
// Every "cifrado" in the base name becomes "decifrado"; names without it
// get "_decifrado.txt" instead of their extension.
func DecryptedName(input string) string {
	dir, base := filepath.Split(input)
	if strings.Contains(base, "cifrado") {
		return dir + strings.ReplaceAll(base, "cifrado", "decifrado")
	}
	return stem(input) + decryptedSuffix
}

// In moves name into dir. An empty dir leaves name unchanged.
func In(dir, name string) string {
	if strings.TrimSpace(dir) == "" {
		return name
	}
	return filepath.Join(dir, filepath.Base(name))
}

func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// WriteFile writes text to path through a temporary file in the same
// directory followed by a rename, so readers never see a partial file.
func WriteFile(path, text string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
