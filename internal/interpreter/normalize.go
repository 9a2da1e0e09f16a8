package interpreter

import "strings"

// Normalize lower-cases a transcript and trims surrounding whitespace.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}
