package sbmigrate

import "strings"

// stripComments removes // line comments and /* */ block comments,
// scanning char-by-char so quote state is respected. A // comment eats
// the rest of its line even when the remainder contains /* or another
// //. Unquoted url(//host/path) bodies are not comments. Newlines
// inside block comments are kept so diagnostics after stripping still
// point at the original line.
func stripComments(content string) string {
	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
		stateURL
	)

	var out strings.Builder
	out.Grow(len(content))

	state := stateCode
	var quote byte

	for i := 0; i < len(content); i++ {
		ch := content[i]

		switch state {
		case stateCode:
			switch {
			case ch == '(' && isURLToken(content, i):
				state = stateURL
				out.WriteByte(ch)
			case ch == '/' && i+1 < len(content) && content[i+1] == '/':
				state = stateLineComment
				i++
			case ch == '/' && i+1 < len(content) && content[i+1] == '*':
				state = stateBlockComment
				i++
			case ch == '"' || ch == '\'':
				state = stateString
				quote = ch
				out.WriteByte(ch)
			default:
				out.WriteByte(ch)
			}

		case stateLineComment:
			if ch == '\n' {
				state = stateCode
				out.WriteByte(ch)
			}

		case stateBlockComment:
			switch {
			case ch == '*' && i+1 < len(content) && content[i+1] == '/':
				state = stateCode
				i++
			case ch == '\n':
				out.WriteByte(ch)
			}

		case stateString:
			out.WriteByte(ch)
			if ch == '\\' && i+1 < len(content) {
				i++
				out.WriteByte(content[i])
			} else if ch == quote {
				state = stateCode
			}

		case stateURL:
			out.WriteByte(ch)
			if ch == ')' || ch == '\n' {
				state = stateCode
			}
		}
	}

	return out.String()
}

// isURLToken reports whether the paren at pos opens a url() token.
func isURLToken(content string, pos int) bool {
	if pos < 3 || !strings.EqualFold(content[pos-3:pos], "url") {
		return false
	}
	return pos == 3 || !isWordByte(content[pos-4])
}

// commentSpans returns the byte ranges of every comment in content,
// sorted by start offset. Line-comment spans run to (not including)
// the newline.
func commentSpans(content string) [][2]int {
	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
		stateURL
	)

	var spans [][2]int
	state := stateCode
	start := 0
	var quote byte

	for i := 0; i < len(content); i++ {
		ch := content[i]

		switch state {
		case stateCode:
			switch {
			case ch == '(' && isURLToken(content, i):
				state = stateURL
			case ch == '/' && i+1 < len(content) && content[i+1] == '/':
				state = stateLineComment
				start = i
				i++
			case ch == '/' && i+1 < len(content) && content[i+1] == '*':
				state = stateBlockComment
				start = i
				i++
			case ch == '"' || ch == '\'':
				state = stateString
				quote = ch
			}

		case stateLineComment:
			if ch == '\n' {
				spans = append(spans, [2]int{start, i})
				state = stateCode
			}

		case stateBlockComment:
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				spans = append(spans, [2]int{start, i + 2})
				state = stateCode
				i++
			}

		case stateString:
			if ch == '\\' && i+1 < len(content) {
				i++
			} else if ch == quote {
				state = stateCode
			}

		case stateURL:
			if ch == ')' || ch == '\n' {
				state = stateCode
			}
		}
	}

	if state == stateLineComment || state == stateBlockComment {
		spans = append(spans, [2]int{start, len(content)})
	}

	return spans
}

// inSpans reports whether pos falls inside any of the sorted spans.
func inSpans(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos < s[0] {
			return false
		}
		if pos < s[1] {
			return true
		}
	}
	return false
}
