package textenc

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// detectPrefixSize is how many leading bytes are fed to charset detection
const detectPrefixSize = 1024

// Result is the outcome of decoding one raw resource payload.
type Result struct {
	Text     string // decoded text, always valid UTF-8
	Encoding string // name of the encoding that produced Text
	Lossy    bool   // true if undecodable bytes were replaced with U+FFFD
}

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Decode converts raw bytes of unknown encoding to UTF-8 text.
//
// Candidates are tried in priority order: an auto-detected guess, UTF-8
// with BOM, plain UTF-8, Big5, then Latin-1. A candidate wins when its
// output is clean UTF-8 and parses as CSV. If every candidate fails the
// bytes are decoded lossily; Decode never fails outright, because a
// partially garbled calendar beats an aborted batch.
//
// Note: cp950 and Big5 share one implementation in x/text, so the chain
// carries a single Big5 entry.
func Decode(raw []byte) Result {
	for _, c := range candidates(raw) {
		text, ok := tryDecode(raw, c.enc)
		if !ok {
			continue
		}
		if !looksTabular(text) {
			continue
		}
		return Result{Text: text, Encoding: c.name}
	}

	return Result{
		Text:     strings.ToValidUTF8(string(raw), string(utf8.RuneError)),
		Encoding: "utf-8",
		Lossy:    true,
	}
}

// candidates builds the deduplicated candidate list for the given bytes.
func candidates(raw []byte) []candidate {
	fixed := []candidate{
		{"utf-8-sig", unicode.UTF8BOM},
		{"utf-8", unicode.UTF8},
		{"big5", traditionalchinese.Big5},
		{"iso-8859-1", charmap.ISO8859_1},
	}

	out := make([]candidate, 0, len(fixed)+1)
	seen := make(map[string]bool)

	prefix := raw
	if len(prefix) > detectPrefixSize {
		prefix = prefix[:detectPrefixSize]
	}
	if enc, name, certain := charset.DetermineEncoding(prefix, ""); enc != nil {
		// windows-1252 is DetermineEncoding's uncertain default; letting it
		// in ahead of Big5 would win with mojibake, so only take a certain
		// detection or a non-default guess. A BOM detection reports plain
		// utf-8, which would keep the BOM in the text; the utf-8-sig
		// candidate handles that input instead.
		bom := bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
		if (certain || name != "windows-1252") && !(name == "utf-8" && bom) {
			out = append(out, candidate{name, enc})
			seen[name] = true
		}
	}

	for _, c := range fixed {
		if seen[c.name] {
			continue
		}
		seen[c.name] = true
		out = append(out, c)
	}

	return out
}

// tryDecode decodes raw with enc, rejecting any output that required
// replacement runes (mojibake) or is not clean UTF-8.
func tryDecode(raw []byte, enc encoding.Encoding) (string, bool) {
	text, _, err := transform.String(enc.NewDecoder(), string(raw))
	if err != nil {
		return "", false
	}
	if !utf8.ValidString(text) {
		return "", false
	}
	if strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return text, true
}

// looksTabular reports whether text parses as a non-empty CSV document.
func looksTabular(text string) bool {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return false
	}
	return len(records) > 0
}
