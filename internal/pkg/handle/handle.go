/*
Package handle normalizes and validates the public handles used for both
account usernames and group chat handles.

A handle is stored in its original casing for display while a lowercase
form backs the uniqueness constraint, so "Bek" and "bek" collide.
*/
package handle

import (
	"regexp"
	"strings"
)

var validHandle = regexp.MustCompile(`^[a-z0-9_]{4,24}$`)

// Normalize lowers the handle and strips surrounding whitespace and a
// leading "@" so that "@Bek " and "bek" normalize to the same key.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "@")
	return strings.ToLower(s)
}

// Valid reports whether the normalized handle is acceptable: 4-24
// characters of lowercase letters, digits, and underscores.
func Valid(normalized string) bool {
	return validHandle.MatchString(normalized)
}
