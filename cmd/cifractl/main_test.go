package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/cifra/internal/cipher"
)

const portuguese = "O rato roeu a roupa do Rei de Roma"

// setup isolates config resolution in a temp HOME and working directory and
// returns that directory.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"CIFRA_DICTIONARY", "CIFRA_DICT", "CIFRA_OUT", "CIFRA_LOG_LEVEL", "CIFRA_SERVER", "CIFRA_METRICS_ADDR", "CIFRA_WORKERS", "CIFRA_TOKEN"} {
		t.Setenv(key, "")
	}
	t.Setenv("CIFRA_RECIPES", filepath.Join(dir, "recipes"))
	t.Setenv("CIFRA_HISTORY", filepath.Join(dir, "history.db"))
	t.Setenv("CIFRA_AUDIT_LOG", filepath.Join(dir, "audit.jsonl"))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeDictionary(t *testing.T, dir string, words ...string) string {
	t.Helper()
	path := filepath.Join(dir, "dicionario.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644))
	return path
}

func TestUsageAndVersion(t *testing.T) {
	setup(t)

	code, _, stderr := runCLI()
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, cliBanner)

	code, stdout, _ := runCLI("version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "cifra dev\n", stdout)

	code, _, _ = runCLI("version", "extra")
	assert.Equal(t, 2, code)

	code, _, stderr = runCLI("enigma")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestCaesarInline(t *testing.T) {
	setup(t)

	code, stdout, stderr := runCLI("caesar", "-k", "3", "-t", "Be Wish")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Eh Zlvk\n", stdout)

	code, stdout, _ = runCLI("caesar", "-d", "-k", "-23", "-t", "Eh Zlvk")
	require.Equal(t, 0, code)
	assert.Equal(t, cipher.CaesarDecrypt("Eh Zlvk", -23)+"\n", stdout)

	code, _, _ = runCLI("caesar", "-t", "abc")
	assert.Equal(t, 2, code, "missing key")

	code, _, _ = runCLI("caesar", "-k", "three", "-t", "abc")
	assert.Equal(t, 2, code, "non-integer key")

	code, _, _ = runCLI("caesar", "-k", "3")
	assert.Equal(t, 2, code, "missing input")

	code, _, _ = runCLI("caesar", "-k", "3", "-t", "a", "-f", "x.txt")
	assert.Equal(t, 2, code, "conflicting input")
}

func TestCaesarFileRoundTrip(t *testing.T) {
	dir := setup(t)
	src := filepath.Join(dir, "carta.txt")
	require.NoError(t, os.WriteFile(src, []byte("Olá, mundo"), 0o644))

	code, stdout, stderr := runCLI("caesar", "-k", "5", "-f", src)
	require.Equal(t, 0, code, stderr)
	encrypted := filepath.Join(dir, "carta_cifrado.txt")
	assert.Contains(t, stdout, encrypted)

	data, err := os.ReadFile(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "Tqá, rzsit", string(data))

	code, _, stderr = runCLI("caesar", "-d", "-k", "5", "-f", encrypted)
	require.Equal(t, 0, code, stderr)
	data, err = os.ReadFile(filepath.Join(dir, "carta_decifrado.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Olá, mundo", string(data))

	audit, err := os.ReadFile(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(audit), `"event_type":"transform"`))
}

func TestVigenere(t *testing.T) {
	dir := setup(t)

	code, stdout, _ := runCLI("vigenere", "-k", "LEMON", "-t", "Attack at dawn")
	require.Equal(t, 0, code)
	assert.Equal(t, "Lxfopv ef rnhr\n", stdout)

	code, stdout, _ = runCLI("vigenere", "-d", "-k", "lemon", "-t", "Lxfopv ef rnhr")
	require.Equal(t, 0, code)
	assert.Equal(t, "Attack at dawn\n", stdout)

	code, _, stderr := runCLI("vigenere", "-k", "123", "-t", "abc")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid key")

	src := filepath.Join(dir, "nota.md")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0o644))
	code, _, _ = runCLI("vigenere", "-k", "b", "-f", src)
	assert.Equal(t, 1, code, ".md is not a supported input format")

	audit, err := os.ReadFile(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)
	assert.NotContains(t, string(audit), "LEMON")
}

func TestCrackFile(t *testing.T) {
	dir := setup(t)
	dict := writeDictionary(t, dir, "o", "rato", "roeu", "a", "roupa", "do", "rei", "de", "roma")
	src := filepath.Join(dir, "mensagem_cifrado.txt")
	require.NoError(t, os.WriteFile(src, []byte(cipher.Caesar(portuguese, 7)), 0o644))

	code, stdout, stderr := runCLI("crack", "-f", src, "-dict", dict, "-workers", "4")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Key found: 7 (score 9)")
	assert.Contains(t, stdout, portuguese)

	data, err := os.ReadFile(filepath.Join(dir, "mensagem_decifrado.txt"))
	require.NoError(t, err)
	assert.Equal(t, portuguese, string(data))

	code, stdout, _ = runCLI("history")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "shift=7")
	assert.Contains(t, stdout, "parallel")
	assert.Contains(t, stdout, src)
}

func TestCrackFileToStdoutPrintsPlaintextOnce(t *testing.T) {
	dir := setup(t)
	dict := writeDictionary(t, dir, "o", "rato", "roeu", "a", "roupa", "do", "rei", "de", "roma")
	src := filepath.Join(dir, "mensagem_cifrado.txt")
	require.NoError(t, os.WriteFile(src, []byte(cipher.Caesar(portuguese, 7)), 0o644))

	code, stdout, stderr := runCLI("crack", "-f", src, "-dict", dict, "-stdout", "-no-history")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Key found: 7 (score 9)")
	assert.NotContains(t, stdout, "=== Start of decrypted text ===")
	assert.Equal(t, 1, strings.Count(stdout, portuguese))

	_, err := os.Stat(filepath.Join(dir, "mensagem_decifrado.txt"))
	assert.True(t, os.IsNotExist(err), "-stdout must not write a file")
}

func TestCrackInlineToStdout(t *testing.T) {
	dir := setup(t)
	dict := writeDictionary(t, dir, "o", "rato", "roeu", "a", "roupa", "do", "rei", "de", "roma")

	code, stdout, stderr := runCLI("crack", "-t", cipher.Caesar(portuguese, 2), "-dict", dict, "-stdout", "-no-history")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Key found: 2 (score 9)\n"+portuguese+"\n", stdout)
}

func TestCrackPreviewAndDefaults(t *testing.T) {
	dir := setup(t)
	writeDictionary(t, dir, "o", "rato", "roeu", "a", "roupa", "do", "rei", "de", "roma")

	code, stdout, stderr := runCLI("crack", "-t", cipher.Caesar(portuguese, 3), "-preview", "6", "-no-history")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Key found: 3")
	assert.Contains(t, stdout, "\nO rato\n")
	assert.NotContains(t, stdout, "roupa")

	_, err := os.Stat(filepath.Join(dir, "history.db"))
	assert.True(t, os.IsNotExist(err), "-no-history must not create the database")
}

func TestCrackDictionaryProblems(t *testing.T) {
	dir := setup(t)

	code, _, stderr := runCLI("crack", "-t", "Khoor", "-dict", filepath.Join(dir, "missing.txt"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")

	empty := writeDictionary(t, dir)
	code, stdout, stderr := runCLI("crack", "-t", "Khoor", "-dict", empty, "-no-history")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "warning:")
	assert.Contains(t, stdout, "Key found: 1 (score 0)")
}

func TestDetect(t *testing.T) {
	dir := setup(t)
	dict := writeDictionary(t, dir, "o", "rato", "roeu", "a", "roupa", "do", "rei", "de", "roma")

	code, stdout, stderr := runCLI("detect", "-t", cipher.Caesar(portuguese, 11), "-dict", dict, "-top", "3")
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Shift"))
	assert.True(t, strings.HasPrefix(lines[1], "11 "), lines[1])
	assert.Contains(t, lines[1], "100.0%")
}

func TestFreqJSON(t *testing.T) {
	setup(t)
	code, stdout, stderr := runCLI("freq", "-json", "-t", "Banana! Ébano, 123")
	require.Equal(t, 0, code, stderr)

	var report freqReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 11, report.Total)
	require.NotEmpty(t, report.Letters)
	assert.Equal(t, "a", report.Letters[0].Letter)
	assert.Equal(t, 4, report.Letters[0].Count)

	code, stdout, _ = runCLI("freq", "-t", "aab")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Letter")
	assert.Contains(t, stdout, "66.67%")
}

func TestPipelineAndRecipes(t *testing.T) {
	setup(t)
	steps := "caesar_encrypt:key=3;vigenere_encrypt:keyword=LEMON;rot13"

	code, stdout, stderr := runCLI("pipeline", "-ops", steps, "-t", "Attack at dawn")
	require.Equal(t, 0, code, stderr)
	encrypted := strings.TrimSuffix(stdout, "\n")
	assert.NotEqual(t, "Attack at dawn", encrypted)

	code, stdout, stderr = runCLI("pipeline", "-ops", steps, "-reverse", "-t", encrypted)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Attack at dawn\n", stdout)

	code, _, _ = runCLI("pipeline", "-ops", "enigma:key=1", "-t", "x")
	assert.Equal(t, 2, code)

	code, _, stderr = runCLI("recipe", "save", "-name", "triple", "-ops", steps, "-description", "demo chain", "-tags", "demo, layered")
	require.Equal(t, 0, code, stderr)

	code, stdout, _ = runCLI("recipe", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "triple")
	assert.Contains(t, stdout, "3 steps")

	code, stdout, _ = runCLI("recipe", "search", "LAYER")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "triple")

	code, stdout, _ = runCLI("recipe", "show", "triple")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "name: triple")
	assert.Contains(t, stdout, "vigenere_encrypt")

	code, stdout, stderr = runCLI("pipeline", "-recipe", "triple", "-t", "Attack at dawn")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, encrypted+"\n", stdout)

	code, _, _ = runCLI("recipe", "delete", "triple")
	require.Equal(t, 0, code)
	code, _, _ = runCLI("recipe", "delete", "triple")
	assert.Equal(t, 1, code)
}

func TestParseSteps(t *testing.T) {
	p, err := parseSteps(" caesar_decrypt:key=-4 ; rot13 ;")
	require.NoError(t, err)
	require.Len(t, p.Operations, 2)
	assert.Equal(t, -4, p.Operations[0].Parameters["key"])
	assert.True(t, p.Reversible)

	_, err = parseSteps("caesar_encrypt:key")
	assert.Error(t, err)
	_, err = parseSteps(" ; ")
	assert.Error(t, err)
}

func TestOpsAndConfig(t *testing.T) {
	setup(t)
	code, stdout, _ := runCLI("ops")
	require.Equal(t, 0, code)
	for _, name := range []string{"caesar_encrypt", "caesar_decrypt", "vigenere_encrypt", "vigenere_decrypt", "rot13"} {
		assert.Contains(t, stdout, name)
	}

	code, stdout, _ = runCLI("config", "print")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "dictionary_path: dicionario.txt")
	assert.Contains(t, stdout, "max_shift: 23")

	code, _, _ = runCLI("config")
	assert.Equal(t, 2, code)
}
