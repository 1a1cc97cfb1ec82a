// Package validation checks externally-sourced identifiers before they
// enter the authorization layer.
package validation

import "regexp"

// Scope names start and end alphanumeric, may contain [a-zA-Z0-9:_.-] in
// between, and are at most 64 characters.
var scopeNameRe = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9:_\.-]{0,62}[a-zA-Z0-9])?$`)

// ValidScopeName reports whether name is an acceptable scope name.
// Scope rows come from the database, but a key or admin grant written
// through an older surface may carry junk; the resolver drops such rows
// instead of granting them.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}
