// Package util holds small helpers shared across layers.
package util

import "strings"

// MaskEmail redacts an email address for logging: first character of the
// local part and of the domain survive, the rest is dropped.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	local, domain := s[:i], s[i+1:]
	if len(local) > 1 {
		local = local[:1] + "…"
	}
	parts := strings.Split(domain, ".")
	if len(parts) > 0 && len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return local + "@" + strings.Join(parts, ".")
}

// MaskKey redacts an API key for logging, keeping only a short prefix so
// operators can correlate entries without the log leaking the credential.
func MaskKey(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "…"
}
