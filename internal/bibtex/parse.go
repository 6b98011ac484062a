// Package bibtex extracts bibliography records from BibTeX source text.
//
// The parser is tolerant: blocks that cannot be read as an entry (missing key,
// unbalanced delimiters, non-entry directives) are skipped rather than
// reported, so one broken entry never hides the rest of a bibliography.
package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/bibdup/internal/reference"
)

// DOIField is the field name (case-insensitive) holding a record's DOI.
const DOIField = "doi"

// nonEntryTypes are @-directives that never describe a record.
var nonEntryTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// Parse scans text and returns the records it contains in source order.
// It never fails; text without any readable entry yields a nil slice.
func Parse(text string) []reference.Record {
	var records []reference.Record

	pos := 0
	line := 1
	lineAt := 0 // offset up to which newlines have been counted

	for pos < len(text) {
		at := strings.IndexByte(text[pos:], '@')
		if at < 0 {
			break
		}
		start := pos + at

		entryType, open, ok := scanHeader(text, start)
		if !ok {
			pos = start + 1
			continue
		}

		end, ok := matchClose(text, open)
		if !ok {
			// Unterminated: resume inside the block so later headers are found.
			pos = open + 1
			continue
		}
		pos = end + 1

		if nonEntryTypes[entryType] {
			continue
		}

		rec, ok := parseBody(text[open+1 : end])
		if !ok {
			continue
		}

		line += strings.Count(text[lineAt:start], "\n")
		lineAt = start

		rec.Type = entryType
		rec.Line = line
		records = append(records, rec)
	}

	return records
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader) ([]reference.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}
	return Parse(string(data)), nil
}

// ParseFile reads and parses a .bib file.
// Only I/O failures are reported; unreadable entries are skipped.
func ParseFile(path string) ([]reference.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// scanHeader reads "@type {" or "@type (" starting at the '@' at start.
// It returns the lowercased type and the offset of the opening delimiter.
func scanHeader(text string, start int) (string, int, bool) {
	i := start + 1
	for i < len(text) && isTypeChar(text[i]) {
		i++
	}
	if i == start+1 {
		return "", 0, false
	}
	entryType := strings.ToLower(text[start+1 : i])

	for i < len(text) && isSpace(text[i]) {
		i++
	}
	if i >= len(text) || (text[i] != '{' && text[i] != '(') {
		return "", 0, false
	}
	return entryType, i, true
}

// matchClose finds the delimiter closing the one at open.
// Braces nest; a parenthesized entry closes on ')' outside any braces.
func matchClose(text string, open int) (int, bool) {
	closer := byte('}')
	if text[open] == '(' {
		closer = ')'
	}

	depth := 0
	for i := open + 1; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			return i, true
		}
	}
	return 0, false
}

// parseBody extracts the key and DOI from the text between an entry's delimiters.
func parseBody(body string) (reference.Record, bool) {
	key, fields, _ := strings.Cut(body, ",")
	key = strings.TrimSpace(key)
	if !validKey(key) {
		return reference.Record{}, false
	}

	return reference.Record{
		Key: key,
		DOI: findField(fields, DOIField),
	}, true
}

// validKey rejects keys that cannot be a citation key.
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, " \t\r\n={}\"#")
}

// findField returns the value of the first field named name, or "" if none.
func findField(fields, name string) string {
	for _, field := range splitFields(fields) {
		fieldName, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(fieldName), name) {
			return unwrapValue(strings.TrimSpace(value))
		}
	}
	return ""
}

// splitFields splits a field list on commas that sit outside braces and quotes.
func splitFields(s string) []string {
	var fields []string
	depth := 0
	quoted := false
	last := 0

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == '"' && depth == 0:
			quoted = !quoted
		case c == ',' && depth == 0 && !quoted:
			fields = append(fields, s[last:i])
			last = i + 1
		}
	}
	if rest := s[last:]; strings.TrimSpace(rest) != "" {
		fields = append(fields, rest)
	}
	return fields
}

// unwrapValue strips one level of braces or quotes from a field value.
func unwrapValue(v string) string {
	if len(v) >= 2 {
		if (v[0] == '{' && v[len(v)-1] == '}') || (v[0] == '"' && v[len(v)-1] == '"') {
			v = v[1 : len(v)-1]
		}
	}
	return strings.TrimSpace(v)
}

func isTypeChar(c byte) bool {
	return c == '_' || c == '-' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
