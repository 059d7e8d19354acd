package logger

import (
	"log/slog"
	"strings"
)

// Key patterns whose values must never be logged.
var sensitiveKeyPatterns = []string{
	"key",
	"passphrase",
	"password",
	"secret",
	"salt",
	"token",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive rewrites attributes that carry key material: values
// under secret-looking keys are fully replaced, and any value that
// looks like a hex-encoded 32-byte key is masked regardless of its key.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if strVal != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}

		if looksLikeKeyMaterial(strVal) {
			return slog.String(a.Key, maskHex(strVal))
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// looksLikeKeyMaterial reports whether s has the shape of a hex-encoded
// 32-byte key (64 hex characters).
func looksLikeKeyMaterial(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// maskHex keeps the first and last four characters as a hint.
func maskHex(s string) string {
	return s[:4] + "..." + s[len(s)-4:]
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
