package sbmigrate

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// MixinInvocation is one parsed legacy mixin call site.
type MixinInvocation struct {
	Name       string
	Arguments  []string
	HasBlock   bool
	SourceLine int
}

// TransformOutcome reports what a Transform run did.
type TransformOutcome struct {
	Content      string
	Unrecognized []string
	Passes       int
	Converged    bool
}

// maxTransformPasses bounds the expand-and-rescan loop. Expanding one
// mixin can surface another nested in its arguments or content block,
// so the transformer reruns until a pass changes nothing; the ceiling
// keeps malformed input from looping forever.
const maxTransformPasses = 10

// mixinCall is what a handler receives: split arguments, the already
// transformed content block for block forms, the indentation of the
// call site, and whether the call stands alone as a statement or sits
// inside a declaration value.
type mixinCall struct {
	args       []string
	block      string
	indent     string
	standalone bool
}

type mixinHandler struct {
	name    string
	minArgs int
	maxArgs int // -1 means unbounded
	block   bool
	expand  func(call mixinCall) (string, bool)
}

func (h mixinHandler) arityOK(n int) bool {
	if n < h.minArgs {
		return false
	}
	return h.maxArgs < 0 || n <= h.maxArgs
}

// MixinTransformer expands the legacy mixin library into plain CSS.
// Unrecognized names pass through unchanged and are reported, never
// dropped.
type MixinTransformer struct {
	registry    map[string]mixinHandler
	namePattern *regexp.Regexp
	log         *zap.Logger
}

var includePattern = regexp.MustCompile(`@include\s+([a-zA-Z_][a-zA-Z0-9_-]*)`)

func NewMixinTransformer(log *zap.Logger) *MixinTransformer {
	if log == nil {
		log = zap.NewNop()
	}
	registry := defaultMixinRegistry()
	return &MixinTransformer{
		registry:    registry,
		namePattern: compileNamePattern(registry),
		log:         log.Named("mixins"),
	}
}

// compileNamePattern builds one regexp matching bare call sites of every
// registered name. Longer names sort first so gradient-horizontal wins
// over gradient, and the leading character class keeps substrings of
// larger identifiers (linear-gradient, -webkit-transform) from matching.
func compileNamePattern(registry map[string]mixinHandler) *regexp.Regexp {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, regexp.QuoteMeta(name))
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return regexp.MustCompile(`(?:^|[^\w.$#-])(` + strings.Join(names, "|") + `)\s*\(`)
}

// Transform expands registered mixin calls until the content stops
// changing or the pass ceiling is hit.
func (t *MixinTransformer) Transform(content string) TransformOutcome {
	out := TransformOutcome{Content: content}
	seen := make(map[string]bool)

	for pass := 0; pass < maxTransformPasses; pass++ {
		next, unknown, changed := t.transformOnce(out.Content)
		out.Passes = pass + 1
		out.Content = next
		for _, name := range unknown {
			if !seen[name] {
				seen[name] = true
				out.Unrecognized = append(out.Unrecognized, name)
			}
		}
		if !changed {
			out.Converged = true
			break
		}
	}

	if !out.Converged {
		t.log.Warn("mixin expansion did not converge",
			zap.Int("passes", out.Passes),
			zap.Strings("unrecognized", out.Unrecognized))
	}
	return out
}

// Scan lists every mixin call site in content without rewriting
// anything. Bare-name sites are reported only for registered names;
// @include sites are reported regardless.
func (t *MixinTransformer) Scan(content string) []MixinInvocation {
	sites := t.collectSites(content)
	invocations := make([]MixinInvocation, 0, len(sites))
	for _, s := range sites {
		invocations = append(invocations, MixinInvocation{
			Name:       s.name,
			Arguments:  s.args,
			HasBlock:   s.hasBlock,
			SourceLine: 1 + strings.Count(content[:s.start], "\n"),
		})
	}
	return invocations
}

// callSite is an internal match with its byte span, so replacements can
// splice without disturbing surrounding text.
type callSite struct {
	name     string
	args     []string
	block    string
	hasBlock bool
	start    int
	end      int
}

func (t *MixinTransformer) collectSites(content string) []callSite {
	comments := commentSpans(content)
	var sites []callSite

	// @include sites first; they also claim the spans bare-name
	// matching must stay out of.
	for _, m := range includePattern.FindAllStringSubmatchIndex(content, -1) {
		if inSpans(comments, m[0]) {
			continue
		}
		site, ok := t.parseIncludeSite(content, m[0], m[2], m[3])
		if ok {
			sites = append(sites, site)
		}
	}

	for _, m := range t.namePattern.FindAllStringSubmatchIndex(content, -1) {
		nameStart, nameEnd := m[2], m[3]
		if inSpans(comments, nameStart) || insideAny(sites, nameStart) {
			continue
		}
		if w := precedingWord(content, nameStart); w == "@mixin" || w == "@function" || w == "@include" {
			continue
		}
		site, ok := t.parseBareSite(content, nameStart, nameEnd)
		if ok {
			sites = append(sites, site)
		}
	}

	sort.Slice(sites, func(i, j int) bool { return sites[i].start < sites[j].start })

	// Drop sites nested inside an earlier one; the outer replacement is
	// rescanned on the next pass.
	kept := sites[:0]
	lastEnd := -1
	for _, s := range sites {
		if s.start < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.end
	}
	return kept
}

func (t *MixinTransformer) parseIncludeSite(content string, start, nameStart, nameEnd int) (callSite, bool) {
	site := callSite{name: content[nameStart:nameEnd], start: start}
	cursor := skipSpaces(content, nameEnd)

	if cursor < len(content) && content[cursor] == '(' {
		inner, after, ok := extractParenGroup(content, cursor)
		if !ok {
			return callSite{}, false
		}
		site.args = splitMixinArgs(inner)
		cursor = skipSpaces(content, after)
	}

	switch {
	case cursor < len(content) && content[cursor] == '{':
		inner, after, ok := extractBraceBlock(content, cursor)
		if !ok {
			return callSite{}, false
		}
		site.block = inner
		site.hasBlock = true
		site.end = after
	case cursor < len(content) && content[cursor] == ';':
		site.end = cursor + 1
	default:
		site.end = cursor
	}
	return site, true
}

func (t *MixinTransformer) parseBareSite(content string, nameStart, nameEnd int) (callSite, bool) {
	site := callSite{name: content[nameStart:nameEnd], start: nameStart}

	parenIdx := skipSpaces(content, nameEnd)
	if parenIdx >= len(content) || content[parenIdx] != '(' {
		return callSite{}, false
	}
	inner, after, ok := extractParenGroup(content, parenIdx)
	if !ok {
		return callSite{}, false
	}
	site.args = splitMixinArgs(inner)
	site.end = after

	handler, registered := t.registry[site.name]
	if registered && handler.block {
		cursor := skipSpaces(content, after)
		if cursor < len(content) && content[cursor] == '{' {
			block, blockEnd, ok := extractBraceBlock(content, cursor)
			if ok {
				site.block = block
				site.hasBlock = true
				site.end = blockEnd
			}
		}
	}

	// Statement-position calls own their trailing semicolon so the
	// expansion's final declaration does not double it.
	if standaloneSite(content, site.start) {
		cursor := skipSpaces(content, site.end)
		if cursor < len(content) && content[cursor] == ';' {
			site.end = cursor + 1
		}
	}
	return site, true
}

func (t *MixinTransformer) transformOnce(content string) (string, []string, bool) {
	sites := t.collectSites(content)
	if len(sites) == 0 {
		return content, nil, false
	}

	var out strings.Builder
	out.Grow(len(content) + 256)
	var unknown []string
	changed := false
	last := 0

	for _, site := range sites {
		out.WriteString(content[last:site.start])
		last = site.end
		original := content[site.start:site.end]

		handler, ok := t.registry[site.name]
		if !ok {
			unknown = append(unknown, site.name)
			out.WriteString(original)
			continue
		}
		if !handler.arityOK(len(site.args)) {
			t.log.Warn("mixin argument count mismatch",
				zap.String("mixin", site.name),
				zap.Int("got", len(site.args)))
			unknown = append(unknown, site.name)
			out.WriteString(original)
			continue
		}
		if handler.block && !site.hasBlock {
			unknown = append(unknown, site.name)
			out.WriteString(original)
			continue
		}

		block := site.block
		if block != "" {
			inner, innerUnknown, _ := t.transformOnce(block)
			block = inner
			unknown = append(unknown, innerUnknown...)
		}

		replacement, ok := handler.expand(mixinCall{
			args:       site.args,
			block:      block,
			indent:     lineIndent(content, site.start),
			standalone: standaloneSite(content, site.start),
		})
		if !ok {
			unknown = append(unknown, site.name)
			out.WriteString(original)
			continue
		}

		out.WriteString(replacement)
		changed = true
	}

	out.WriteString(content[last:])
	return out.String(), unknown, changed
}

func insideAny(sites []callSite, pos int) bool {
	for _, s := range sites {
		if pos >= s.start && pos < s.end {
			return true
		}
	}
	return false
}

func skipSpaces(content string, i int) int {
	for i < len(content) && (content[i] == ' ' || content[i] == '\t') {
		i++
	}
	return i
}

// precedingWord returns the word (including a leading @) immediately
// before pos, separated by at most spaces or tabs.
func precedingWord(content string, pos int) string {
	i := pos
	for i > 0 && (content[i-1] == ' ' || content[i-1] == '\t') {
		i--
	}
	end := i
	for i > 0 {
		ch := content[i-1]
		if ch == '@' {
			i--
			break
		}
		if !isWordByte(ch) {
			break
		}
		i--
	}
	return content[i:end]
}

// lineIndent returns the leading whitespace of the line containing pos.
func lineIndent(content string, pos int) string {
	lineStart := strings.LastIndexByte(content[:pos], '\n') + 1
	i := lineStart
	for i < len(content) && (content[i] == ' ' || content[i] == '\t') {
		i++
	}
	return content[lineStart:i]
}

// standaloneSite reports whether the call at pos begins a statement
// rather than sitting inside a declaration value.
func standaloneSite(content string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch content[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ';', '{', '}':
			return true
		default:
			return false
		}
	}
	return true
}

// extractParenGroup returns the text between the paren at open and its
// matching closer, plus the offset one past the closer. Quote state is
// respected; an unterminated group reports ok=false.
func extractParenGroup(content string, open int) (inner string, end int, ok bool) {
	if content[open] != '(' {
		panic("sbmigrate: extractParenGroup called off a paren")
	}
	depth := 0
	var quote byte
	for i := open; i < len(content); i++ {
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
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return content[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// extractBraceBlock is extractParenGroup for braces.
func extractBraceBlock(content string, open int) (inner string, end int, ok bool) {
	if content[open] != '{' {
		panic("sbmigrate: extractBraceBlock called off a brace")
	}
	depth := 0
	var quote byte
	for i := open; i < len(content); i++ {
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
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// splitMixinArgs splits an extracted argument list on top-level commas.
// Commas inside nested calls and quoted strings do not split; backslash
// escapes inside strings follow extractParenGroup so both scanners agree
// on where a string ends. The input comes from extractParenGroup, so a
// negative depth here means the extractor is broken, not the stylesheet.
func splitMixinArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var parts []string
	var current strings.Builder
	depth := 0
	var quote rune
	escaped := false

	for _, r := range s {
		switch {
		case quote != 0:
			current.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		case r == '(':
			depth++
			current.WriteRune(r)
		case r == ')':
			depth--
			if depth < 0 {
				panic("sbmigrate: unbalanced parens in extracted argument list")
			}
			current.WriteRune(r)
		case r == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	if trailing := strings.TrimSpace(current.String()); trailing != "" {
		parts = append(parts, trailing)
	}
	return parts
}
