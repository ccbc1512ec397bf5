package ics

import "testing"

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain text", "元旦", "元旦"},
		{"Comma", "a,b", `a\,b`},
		{"Semicolon", "a;b", `a\;b`},
		{"Backslash", `a\b`, `a\\b`},
		{"Newline", "a\nb", `a\nb`},
		{"Carriage return stripped", "a\r\nb", `a\nb`},
		{"Backslash before n stays literal", `a\nb`, `a\\nb`},
		{"Everything at once", "a,b;c\\d\ne", `a\,b\;c\\d\ne`},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeText(tt.input); got != tt.want {
				t.Errorf("EscapeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeTextRoundTrip(t *testing.T) {
	// Unescape must reconstruct the original exactly for every input that
	// does not contain a bare carriage return (those are dropped).
	inputs := []string{
		"元旦",
		"a,b;c",
		`back\slash`,
		"multi\nline\ntext",
		"mixed, punctuation; and\nbreaks \\ too",
		"",
	}

	for _, s := range inputs {
		escaped := EscapeText(s)
		if got := UnescapeText(escaped); got != s {
			t.Errorf("round trip for %q: escaped %q, unescaped %q", s, escaped, got)
		}
	}
}
