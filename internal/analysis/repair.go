package analysis

import "strings"

// ExtractJSONObject returns the first balanced {...} span in text,
// ignoring braces inside string literals. When no balanced span exists it
// falls back to the greedy first-{ to last-} slice, and finally to the
// trimmed input, leaving the parse attempt to fail downstream with a
// useful error.
func ExtractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return strings.TrimSpace(text)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	// Unbalanced: take the widest plausible span.
	if end := strings.LastIndexByte(text, '}'); end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// RepairJSON fixes the two syntax defects models most commonly produce:
// closing brackets of the wrong kind, and trailing commas before a
// closing bracket. String literals are never touched.
func RepairJSON(text string) string {
	return removeTrailingCommas(repairBrackets(text))
}

// repairBrackets runs a stack-based scan tracking the closer each opened
// bracket expects, substituting the expected character when a mismatched
// closer appears (e.g. a ')' where a '[' was opened). Brackets inside
// string literals are ignored.
func repairBrackets(text string) string {
	var out []byte
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			out = append(out, c)
			continue
		}
		if c == '\\' && inString {
			escaped = true
			out = append(out, c)
			continue
		}
		if c == '"' {
			inString = !inString
			out = append(out, c)
			continue
		}
		if inString {
			out = append(out, c)
			continue
		}

		switch c {
		case '{':
			stack = append(stack, '}')
			out = append(out, c)
		case '[':
			stack = append(stack, ']')
			out = append(out, c)
		case '}', ']', ')':
			if len(stack) == 0 {
				out = append(out, c)
				continue
			}
			expected := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, expected)
		default:
			out = append(out, c)
		}
	}

	return string(out)
}

// removeTrailingCommas drops a comma when the next non-whitespace
// character closes the enclosing object or array.
func removeTrailingCommas(text string) string {
	var out []byte
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			out = append(out, c)
			continue
		}
		if c == '\\' && inString {
			escaped = true
			out = append(out, c)
			continue
		}
		if c == '"' {
			inString = !inString
			out = append(out, c)
			continue
		}

		if !inString && c == ',' {
			j := i + 1
			for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue // drop the comma
			}
		}

		out = append(out, c)
	}

	return string(out)
}
