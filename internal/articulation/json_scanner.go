package articulation

// stringState tracks whether the scanner is inside a JSON string literal.
// Iterating bytes is safe for the ASCII delimiters involved ({, }, ", \, /, ,)
// because UTF-8 never uses ASCII bytes inside multi-byte sequences.
type stringState struct {
	inString bool
	escape   bool
}

// advance consumes one byte and reports whether it belongs to a string
// literal, quotes included.
func (st *stringState) advance(b byte) bool {
	if st.escape {
		st.escape = false
		return true
	}
	if st.inString {
		if b == '\\' {
			st.escape = true
		} else if b == '"' {
			st.inString = false
		}
		return true
	}
	if b == '"' {
		st.inString = true
		return true
	}
	return false
}

// findJSONCandidates returns every balanced top-level {...} span of s, in
// order. Braces inside string literals do not count, nor do braces in a //
// comment that starts inside an object.
func findJSONCandidates(s string) []string {
	var candidates []string
	var st stringState
	depth := 0
	start := -1

	for i := 0; i < len(s); i++ {
		if depth > 0 && !st.inString && s[i] == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			continue
		}
		if st.advance(s[i]) {
			continue
		}
		switch s[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}
	return candidates
}

// stringMask marks the bytes of s that sit inside string literals.
func stringMask(s string) []bool {
	mask := make([]bool, len(s))
	var st stringState
	for i := 0; i < len(s); i++ {
		mask[i] = st.advance(s[i])
	}
	return mask
}
