package middleware

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// SanitizeText strips null bytes and control characters (newlines and tabs
// survive) and trims whitespace. Text destined for simulated keyboard input
// goes through this first; a stray control character in a dictated message
// must never turn into a hotkey.
func SanitizeText(input string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(input, ""))
}
