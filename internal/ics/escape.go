package ics

import "strings"

// EscapeText escapes a free-text value for use in a TEXT property
// (RFC 5545 3.3.11). Backslash must be doubled before the other escapes
// are introduced; carriage returns are dropped rather than escaped.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, ";", `\;`)
	return s
}

// UnescapeText reverses EscapeText. Unknown escape sequences keep the
// escaped character as-is.
func UnescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		switch r {
		case 'n', 'N':
			b.WriteRune('\n')
		default:
			b.WriteRune(r)
		}
		escaped = false
	}
	return b.String()
}
