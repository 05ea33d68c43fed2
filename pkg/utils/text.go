package utils

import "strings"

// Truncate returns s cut to at most maxLen runes, with "..." appended when cut.
// A maxLen of 0 or less returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// SingleLine collapses runs of whitespace, including newlines, into single spaces.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
