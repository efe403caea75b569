package logger

import (
	"log/slog"
	"strings"
)

// redactedValue replaces values whose key marks them as sensitive.
const redactedValue = "***REDACTED***"

// tokenPrefixes are the platform token formats. Values carrying one of
// these are masked rather than dropped, so operators can still line up
// log entries against the vault.
var tokenPrefixes = []string{"agat_", "agrt_"}

// sensitiveKeys mark attributes that must never reach a log sink in
// the clear, whatever their value looks like.
var sensitiveKeys = []string{
	"password", "secret", "token", "key", "credential", "auth", "bearer",
}

// redactSensitive is the ReplaceAttr hook applied to every attribute.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		for _, p := range tokenPrefixes {
			if strings.HasPrefix(v, p) {
				return slog.String(a.Key, maskToken(v, p))
			}
		}
		if v != "" && isSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// maskToken keeps the prefix and the outer three characters of the
// body: agat_abc...xyz.
func maskToken(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}
