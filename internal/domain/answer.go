package domain

import "strings"

// NormalizeAnswer canonicalizes an answer for comparison: trim and lowercase.
// No whitespace collapsing, accent folding, or numeric tolerance.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// VerifyAnswer compares a submitted answer against the stored canonical form.
func VerifyAnswer(submitted, stored string) bool {
	return NormalizeAnswer(submitted) == stored
}
