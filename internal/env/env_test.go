package env

import "testing"

func TestLookup(t *testing.T) {
	want := "/tmp/words.txt"
	t.Setenv("CIFRA_DICTIONARY", "  "+want+"  ")

	got, ok := Lookup("CIFRA_DICTIONARY")
	if !ok {
		t.Fatalf("expected lookup to succeed")
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLookupBlankIsUnset(t *testing.T) {
	t.Setenv("CIFRA_DICTIONARY", "   ")
	if _, ok := Lookup("CIFRA_DICTIONARY"); ok {
		t.Fatal("blank value should be treated as unset")
	}
}

func TestLookupLegacyWarnsOnce(t *testing.T) {
	ResetWarningsForTesting()
	var warnings int
	restore := SetWarnLoggerForTesting(func(msg string, args ...any) { warnings++ })
	defer restore()

	t.Setenv("CIFRA_DICT", "/legacy.txt")

	for i := 0; i < 3; i++ {
		got, ok := Lookup("CIFRA_DICTIONARY", "CIFRA_DICT")
		if !ok || got != "/legacy.txt" {
			t.Fatalf("expected legacy value, got %q (ok=%v)", got, ok)
		}
	}
	if warnings != 1 {
		t.Fatalf("expected exactly one deprecation warning, got %d", warnings)
	}
}

func TestLookupPrefersNewKey(t *testing.T) {
	ResetWarningsForTesting()
	var warnings int
	restore := SetWarnLoggerForTesting(func(msg string, args ...any) { warnings++ })
	defer restore()

	t.Setenv("CIFRA_DICTIONARY", "/new.txt")
	t.Setenv("CIFRA_DICT", "/legacy.txt")

	got, ok := Lookup("CIFRA_DICTIONARY", "CIFRA_DICT")
	if !ok || got != "/new.txt" {
		t.Fatalf("expected new value, got %q", got)
	}
	if warnings != 0 {
		t.Fatalf("expected no warnings, got %d", warnings)
	}
}
