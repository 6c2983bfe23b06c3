package sbmigrate

import (
	"sort"
	"strings"
)

// StyleRule is one selector block found in a stylesheet.
type StyleRule struct {
	Selector string
	Body     string
	Depth    int
	Category Category
}

// ruleSpan records where a rule sits in the source so excluded rules
// can be cut out without reprinting the file.
type ruleSpan struct {
	selector string
	body     string
	depth    int
	start    int // offset of the first selector byte
	end      int // offset one past the closing brace
}

type openRule struct {
	selStart  int
	selector  string
	bodyStart int
	depth     int
}

// scanRules walks brace pairs and returns every rule (top-level and
// nested, at-rules included) with its selector text, nesting depth and
// byte span, ordered by start offset. balanced is false when the scan
// ends with open braces or hits a stray closer; unterminated rules are
// not emitted because their extent cannot be trusted.
func scanRules(content string) (spans []ruleSpan, balanced bool) {
	balanced = true

	var stack []openRule
	segStart := 0
	var quote byte

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if quote != 0 {
			if ch == '\\' && i+1 < len(content) {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch

		case '{':
			// #{...} interpolation braces are not rule blocks.
			if i > 0 && content[i-1] == '#' {
				i = skipInterpolation(content, i)
				continue
			}
			selStart := segStart + countLeadingSpace(content[segStart:i])
			stack = append(stack, openRule{
				selStart:  selStart,
				selector:  trimSelector(content[segStart:i]),
				bodyStart: i + 1,
				depth:     len(stack),
			})
			segStart = i + 1

		case '}':
			if len(stack) == 0 {
				balanced = false
				segStart = i + 1
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			spans = append(spans, ruleSpan{
				selector: top.selector,
				body:     content[top.bodyStart:i],
				depth:    top.depth,
				start:    top.selStart,
				end:      i + 1,
			})
			segStart = i + 1

		case ';':
			segStart = i + 1
		}
	}

	if len(stack) > 0 {
		balanced = false
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans, balanced
}

// skipInterpolation advances past a #{...} expression starting at the
// opening brace and returns the index of its closing brace.
func skipInterpolation(content string, open int) int {
	depth := 0
	for i := open; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(content) - 1
}

func countLeadingSpace(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return i
		}
	}
	return len(s)
}

// trimSelector collapses a possibly multi-line selector into one line.
func trimSelector(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ScanRules parses content into StyleRule values, classifying each when
// a classifier is supplied. The boolean mirrors scanRules balance.
func ScanRules(content string, c *Classifier) ([]StyleRule, bool) {
	spans, balanced := scanRules(content)
	rules := make([]StyleRule, 0, len(spans))
	for _, sp := range spans {
		rule := StyleRule{
			Selector: sp.selector,
			Body:     sp.body,
			Depth:    sp.depth,
			Category: CategoryUnknown,
		}
		if c != nil {
			rule.Category = c.Classify(sp.selector)
		}
		rules = append(rules, rule)
	}
	return rules, balanced
}
