package generation

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject isolates a balanced top-level JSON object from raw LLM
// output. Fenced code blocks and surrounding prose are tolerated. Returns
// false when no candidate parses.
func ExtractJSONObject(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}

	// Fast path: the whole response is the object.
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}

	// Prefer fenced blocks when present; models often wrap JSON in them.
	for _, block := range fencedBlocks(trimmed) {
		for _, candidate := range jsonCandidates(block) {
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
	}

	for _, candidate := range jsonCandidates(trimmed) {
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	return "", false
}

// fencedBlocks returns the contents of ``` fenced blocks, language tag
// stripped.
func fencedBlocks(s string) []string {
	var blocks []string
	for {
		start := strings.Index(s, "```")
		if start < 0 {
			break
		}
		rest := s[start+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		end := strings.Index(rest, "```")
		if end < 0 {
			break
		}
		blocks = append(blocks, rest[:end])
		s = rest[end+3:]
	}
	return blocks
}

// jsonCandidates scans the input for balanced top-level `{…}` spans using a
// byte-level state machine. Iterating bytes is safe for the ASCII
// delimiters involved because UTF-8 multi-byte sequences never contain
// them.
func jsonCandidates(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var inString, escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
