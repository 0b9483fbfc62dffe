// Package logsanitize provides helpers for sanitizing untrusted values before logging.
package logsanitize

import "strings"

// replacer escapes the characters that can split or realign a log line.
// The replacements contain no escape targets, so applying it twice is a no-op.
var replacer = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Sanitize escapes newline, carriage return and horizontal tab in s as the
// two-character sequences \n, \r and \t, reducing the risk of log
// injection (CWE-117). All other characters, including backslash and other
// control characters, are left unchanged.
func Sanitize(s string) string {
	return replacer.Replace(s)
}

// SanitizeOptional is Sanitize for values that may be absent. A nil input
// yields nil; otherwise the result points to a new sanitized string.
func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	out := Sanitize(*s)
	return &out
}
