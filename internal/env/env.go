// Package env resolves CIFRA_* environment variables, honouring renamed
// legacy keys with a one-time deprecation warning.
package env

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	warnLogger func(msg string, args ...any) = slog.Warn
	warnMu     sync.Mutex
	warnedKeys sync.Map
)

// Lookup returns the trimmed value of key. When key is unset the legacy
// keys are tried in order; the first one found is returned and a
// deprecation warning is logged once per legacy key. Blank values count as
// unset.
func Lookup(key string, legacy ...string) (string, bool) {
	if v, ok := lookupNonEmpty(key); ok {
		return v, true
	}
	for _, old := range legacy {
		if v, ok := lookupNonEmpty(old); ok {
			logDeprecated(old, key)
			return v, true
		}
	}
	return "", false
}

func lookupNonEmpty(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

func logDeprecated(oldKey, newKey string) {
	onceIface, _ := warnedKeys.LoadOrStore(oldKey, &sync.Once{})
	once := onceIface.(*sync.Once)
	once.Do(func() {
		warnMu.Lock()
		logger := warnLogger
		warnMu.Unlock()
		logger("deprecated environment variable", "key", oldKey, "replacement", newKey)
	})
}

// ResetWarningsForTesting clears the cached once guards so tests can verify
// warning behaviour deterministically.
func ResetWarningsForTesting() {
	warnMu.Lock()
	warnedKeys = sync.Map{}
	warnMu.Unlock()
}

// SetWarnLoggerForTesting swaps the logger used for warnings. The returned
// function restores the previous logger and should be deferred in tests.
func SetWarnLoggerForTesting(fn func(msg string, args ...any)) (restore func()) {
	warnMu.Lock()
	previous := warnLogger
	warnLogger = fn
	warnMu.Unlock()
	return func() {
		warnMu.Lock()
		warnLogger = previous
		warnMu.Unlock()
	}
}
