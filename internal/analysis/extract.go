package analysis

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// ExtractJSON isolates the single JSON object in a model reply that may be
// wrapped in prose or code fences. Fenced blocks are tried first, then the
// whole reply. The first brace-balanced candidate that is valid JSON wins.
// Failing that, the first broken candidate (invalid or never closed) is
// returned so that parsing reports it.
func ExtractJSON(reply string) (string, error) {
	var fallback string
	for _, s := range append(fencedBlocks(reply), reply) {
		obj, valid := scanObject(s)
		if valid {
			return obj, nil
		}
		if fallback == "" {
			fallback = obj
		}
	}

	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoJSON
}

// fencedBlocks returns the bodies of ``` blocks in order of appearance. The
// info string after the opening fence (e.g. "json") is dropped. An unclosed
// final fence runs to the end of the reply.
func fencedBlocks(s string) []string {
	var blocks []string
	for {
		open := strings.Index(s, fence)
		if open == -1 {
			return blocks
		}
		s = s[open+len(fence):]

		// Skip the info string up to the end of the line.
		if nl := strings.IndexByte(s, '\n'); nl != -1 {
			s = s[nl+1:]
		} else {
			return blocks
		}

		end := strings.Index(s, fence)
		if end == -1 {
			return append(blocks, s)
		}
		blocks = append(blocks, s[:end])
		s = s[end+len(fence):]
	}
}

// scanObject finds the first valid object in s by matching braces, ignoring
// braces inside string literals. Brace pairs that do not start like an object,
// such as "{braces}" in prose, are skipped. A balanced candidate that is not
// valid JSON is skipped as a whole and kept as the fallback; an unclosed one
// ends the scan, since every later brace lies inside it.
func scanObject(s string) (obj string, valid bool) {
	for from := 0; from < len(s); {
		rel := strings.IndexByte(s[from:], '{')
		if rel == -1 {
			break
		}
		start := from + rel

		if !looksLikeObject(s[start+1:]) {
			from = start + 1
			continue
		}

		end := matchBrace(s, start)
		if end == -1 {
			if obj == "" {
				obj = s[start:]
			}
			break
		}

		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
		if obj == "" {
			obj = candidate
		}
		from = end + 1
	}
	return obj, false
}

// looksLikeObject reports whether the text following a '{' begins a JSON
// member or closes an empty object.
func looksLikeObject(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest != "" && (rest[0] == '"' || rest[0] == '}')
}

// matchBrace returns the index of the '}' closing the '{' at start, or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
