// Package redact masks cipher keys and other secrets before they reach audit
// logs or persisted history.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	neverPersistKey = "never_persist"
	redactedSecret  = "[REDACTED_SECRET]"
)

// sensitiveKeys are metadata keys whose values are always masked,
// regardless of their shape. A Caesar shift is not listed: it is the
// outcome of a crack run and is reported as "shift".
var sensitiveKeys = map[string]struct{}{
	"key":      {},
	"keyword":  {},
	"password": {},
	"secret":   {},
	"token":    {},
}

var (
	kvSecretRe  = regexp.MustCompile(`(?i)\b((?:keyword|key|secret|password|token)\s*[:=]\s*)(['"]?)([^\s'",;]+)(['"]?)`)
	bearerRe    = regexp.MustCompile(`(?i)\b(bearer)\s+([A-Za-z0-9._\-]{10,})`)
	longTokenRe = regexp.MustCompile(`\b[A-Za-z0-9]{32,}\b`)
)

// String masks inline key assignments ("keyword=LEMON") and long opaque
// tokens found in free text.
func String(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}
	masked := kvSecretRe.ReplaceAllString(in, `$1$2`+redactedSecret+`$4`)
	masked = bearerRe.ReplaceAllString(masked, `$1 `+redactedSecret)
	masked = longTokenRe.ReplaceAllString(masked, redactedSecret)
	return masked
}

// Interface redacts recognised sensitive values within nested structures.
func Interface(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case fmt.Stringer:
		return String(v.String())
	case []string:
		return Slice(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Interface(elem)
		}
		return out
	case map[string]string:
		return MapString(v)
	case map[string]any:
		return Map(v)
	default:
		return value
	}
}

// Map redacts sensitive values within a map of arbitrary values. Keys named
// in sensitiveKeys, or listed under "never_persist", are replaced outright.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	masked := applyNeverPersist(in)
	out := make(map[string]any, len(masked))
	for k, v := range masked {
		if isSensitiveKey(k) {
			out[k] = redactedSecret
			continue
		}
		out[k] = Interface(v)
	}
	return out
}

// MapString redacts sensitive values within a string map.
func MapString(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	asAny := make(map[string]any, len(in))
	for k, v := range in {
		asAny[k] = v
	}
	masked := Map(asAny)
	out := make(map[string]string, len(masked))
	for k, v := range masked {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// Slice redacts sensitive values within a slice of strings.
func Slice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = String(v)
	}
	return out
}

// Preview shortens text to at most limit runes for display. A limit of zero
// or less disables truncation.
func Preview(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}

func isSensitiveKey(k string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(k))]
	return ok
}

func applyNeverPersist(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	var toMask []string
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			toMask = append(toMask, collectNeverPersist(v)...)
			continue
		}
		out[k] = v
	}
	for _, key := range toMask {
		key = strings.TrimSpace(key)
		if _, ok := out[key]; ok {
			out[key] = redactedSecret
		}
	}
	return out
}

func collectNeverPersist(value any) []string {
	switch v := value.(type) {
	case string:
		return strings.Split(v, ",")
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			out = append(out, fmt.Sprint(elem))
		}
		return out
	default:
		return nil
	}
}
