package articulation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// REPAIR STEPS
// =============================================================================
// Each step is a total func(string) string. A step whose precondition does
// not hold returns its input unchanged, so running a step twice is the same
// as running it once.

// Step is one named text transformation.
type Step struct {
	Name  string
	Apply func(string) string
}

const fence = "```"

// stripFences removes a markdown fence wrapping the whole text, including an
// info string such as ```json on the opening line.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, fence) {
		return s
	}
	t = strings.TrimPrefix(t, fence)
	if nl := strings.IndexByte(t, '\n'); nl != -1 {
		if info := strings.TrimSpace(t[:nl]); !strings.ContainsAny(info, "{[\"") {
			t = t[nl+1:]
		}
	} else {
		t = strings.TrimPrefix(strings.TrimPrefix(t, "json"), "JSON")
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, fence)
	return strings.TrimSpace(t)
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// substitutePlaceholders returns a step that replaces the allowed {{name}}
// tokens with values from data. Inside a string literal the plain text of
// the value is spliced in; elsewhere its JSON encoding, so numbers stay
// numbers. Tokens that are not allowed or have no value are left alone.
func substitutePlaceholders(allowed []string, data map[string]any) func(string) string {
	permitted := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		permitted[name] = true
	}

	return func(s string) string {
		if !strings.Contains(s, "{{") {
			return s
		}
		matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
		if len(matches) == 0 {
			return s
		}
		mask := stringMask(s)

		var b strings.Builder
		last := 0
		for _, m := range matches {
			name := s[m[2]:m[3]]
			val, ok := data[name]
			if !permitted[name] || !ok {
				continue
			}
			b.WriteString(s[last:m[0]])
			if mask[m[0]] {
				b.WriteString(textForm(val))
			} else {
				b.WriteString(jsonForm(val))
			}
			last = m[1]
		}
		b.WriteString(s[last:])
		return b.String()
	}
}

// textForm renders a value for use inside a JSON string literal.
func textForm(v any) string {
	var text string
	switch x := v.(type) {
	case string:
		text = x
	case float64:
		text = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		text = strings.Trim(string(data), `"`)
	}
	quoted, _ := json.Marshal(text)
	return string(quoted[1 : len(quoted)-1])
}

func jsonForm(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json|JSON)\\s*\\n(.*?)```")

// extractObject narrows the text to the first balanced object that parses
// once comments and trailing commas are gone, preferring the body of a
// ```json block when one exists. When no balanced span parses, the first one
// is kept. Unbalanced text falls back to the widest span from the first { to
// the last }. A bare member list such as `"steps": 4200` with no braces at
// all is wrapped into an object.
func extractObject(s string) string {
	if m := fencedJSONBlock.FindStringSubmatch(s); m != nil && strings.Contains(m[1], "{") {
		s = m[1]
	}
	if candidates := findJSONCandidates(s); len(candidates) > 0 {
		for _, c := range candidates {
			if json.Valid([]byte(removeTrailingCommas(stripLineComments(c)))) {
				return c
			}
		}
		return candidates[0]
	}
	open, closing := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if open != -1 && closing > open {
		return s[open : closing+1]
	}
	if open == -1 && closing == -1 && bareMembers.MatchString(s) {
		return "{" + strings.TrimSpace(s) + "}"
	}
	return s
}

var bareMembers = regexp.MustCompile(`^\s*"[^"\\]*"\s*:`)

// stripLineComments drops // comments that start outside string literals.
// The newline ending a comment is kept.
func stripLineComments(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var st stringState
	for i := 0; i < len(s); i++ {
		if !st.inString && s[i] == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		}
		st.advance(s[i])
		b.WriteByte(s[i])
	}
	return b.String()
}

// removeTrailingCommas drops a comma followed only by whitespace and a
// closing } or ], outside string literals.
func removeTrailingCommas(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var st stringState
	for i := 0; i < len(s); i++ {
		if !st.advance(s[i]) && s[i] == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
