package chat

import "strings"

// Sanitize strips the stray backslashes the answering service leaves
// behind when it escapes bold and inline-code markers. The markers
// themselves are reply content and are kept.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, `\`, "")
}
