package sbmigrate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Output is one destination file produced from a source stylesheet.
type Output struct {
	Path    string
	Content string
}

// TransformationResult describes everything that happened to one
// source stylesheet. Content is always populated, even when validation
// fails; the caller owns retry/abort policy.
type TransformationResult struct {
	SourcePath         string
	Outputs            []Output
	ExcludedRuleCount  int
	UnrecognizedMixins []string
	Passes             int
	SyntaxValid        bool
	SyntaxError        string
	Warnings           []string
	Err                error
}

// FileContext feeds one source stylesheet through the pipeline.
type FileContext struct {
	SourcePath   string
	Content      string
	Destinations []string

	// DropImports lists @import references (as written in the source)
	// to remove from the output. The orchestrator routes explicitly
	// imported map styles here so they stay with the inlining pass
	// instead of leaking into page files.
	DropImports []string
}

// ProcessorOptions tune the pipeline.
type ProcessorOptions struct {
	// AssetBase replaces the relative prefix of url() references,
	// usually /wp-content/themes/<theme>.
	AssetBase string

	// Validator overrides the default sass round-trip validator.
	Validator *SyntaxValidator
}

// Processor runs the per-file conversion pipeline: comment stripping,
// chrome-rule exclusion, variable and color conversion, mixin
// expansion, breakpoint and asset-path rewriting, and a final syntax
// gate. Processors are safe for concurrent use; each call owns its
// own state.
type Processor struct {
	classifier  *Classifier
	transformer *MixinTransformer
	validator   *SyntaxValidator
	assetBase   string
	log         *zap.Logger
}

const defaultAssetBase = "/wp-content/themes/dealer-theme"

func NewProcessor(cfg DetectionConfig, opts ProcessorOptions, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("processor")

	validator := opts.Validator
	if validator == nil {
		validator = NewSyntaxValidator(log)
	}
	base := strings.TrimSuffix(opts.AssetBase, "/")
	if base == "" {
		base = defaultAssetBase
	}

	return &Processor{
		classifier:  NewClassifier(cfg, log),
		transformer: NewMixinTransformer(log),
		validator:   validator,
		assetBase:   base,
		log:         log,
	}
}

// Validator exposes the syntax gate so callers can re-check assembled
// destination files.
func (p *Processor) Validator() *SyntaxValidator { return p.validator }

// ProcessFile runs the conversion pipeline over one stylesheet. Empty
// input yields empty valid output. Classification runs before mixin
// expansion so original selector text decides exclusion.
func (p *Processor) ProcessFile(ctx context.Context, fc FileContext) TransformationResult {
	res := TransformationResult{SourcePath: fc.SourcePath, SyntaxValid: true}

	if strings.TrimSpace(fc.Content) == "" {
		for _, dest := range fc.Destinations {
			res.Outputs = append(res.Outputs, Output{Path: dest})
		}
		return res
	}

	content := stripComments(fc.Content)
	content = p.dropImports(content, fc.DropImports)

	content, dropped, balanced := p.stripExcludedRules(content)
	res.ExcludedRuleCount = dropped
	if !balanced {
		res.Warnings = append(res.Warnings, "unbalanced braces in source; excluded-rule scan was best-effort")
	}

	var varWarnings []string
	content, varWarnings = convertVariables(content)
	res.Warnings = append(res.Warnings, varWarnings...)

	content = convertKnownColors(content)

	outcome := p.transformer.Transform(content)
	content = outcome.Content
	res.UnrecognizedMixins = outcome.Unrecognized
	res.Passes = outcome.Passes
	if !outcome.Converged {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("mixin expansion still changing after %d passes", maxTransformPasses))
	}
	for _, name := range outcome.Unrecognized {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("unrecognized mixin %q left in place", name))
	}

	content = normalizeBreakpoints(content)
	content = p.rewriteAssetPaths(content)
	content = normalizeWhitespace(content)

	res.SyntaxValid, res.SyntaxError = p.validator.Validate(ctx, content)
	if !res.SyntaxValid {
		p.log.Warn("transformed output failed syntax validation",
			zap.String("source", fc.SourcePath),
			zap.String("error", res.SyntaxError))
	}

	for _, dest := range fc.Destinations {
		res.Outputs = append(res.Outputs, Output{Path: dest, Content: content})
	}
	return res
}

var importStmtPattern = regexp.MustCompile(`(?m)^[ \t]*@import\s+[^;]+;[ \t]*\r?\n?`)

// dropImports removes @import statements whose quoted reference matches
// one of refs.
func (p *Processor) dropImports(content string, refs []string) string {
	if len(refs) == 0 {
		return content
	}
	want := make(map[string]bool, len(refs))
	for _, r := range refs {
		want[strings.TrimSpace(r)] = true
	}
	return importStmtPattern.ReplaceAllStringFunc(content, func(stmt string) string {
		for _, ref := range quotedStrings(stmt) {
			if want[ref] {
				p.log.Debug("dropped map import from page output", zap.String("ref", ref))
				return ""
			}
		}
		return stmt
	})
}

var quotedPattern = regexp.MustCompile(`['"]([^'"]+)['"]`)

func quotedStrings(s string) []string {
	matches := quotedPattern.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// stripExcludedRules removes whole rule blocks whose selector
// classifies into a chrome category. Rules nested inside a removed
// block go with it and are not counted separately.
func (p *Processor) stripExcludedRules(content string) (string, int, bool) {
	spans, balanced := scanRules(content)
	if len(spans) == 0 {
		return content, 0, balanced
	}

	var cuts [][2]int
	count := 0
	for _, sp := range spans {
		if len(cuts) > 0 && sp.start < cuts[len(cuts)-1][1] {
			continue
		}
		if p.classifier.Classify(sp.selector).Excluded() {
			cuts = append(cuts, [2]int{sp.start, sp.end})
			count++
		}
	}
	if len(cuts) == 0 {
		return content, 0, balanced
	}

	var out strings.Builder
	out.Grow(len(content))
	last := 0
	for _, cut := range cuts {
		out.WriteString(content[last:cut[0]])
		last = cut[1]
	}
	out.WriteString(content[last:])
	return out.String(), count, balanced
}

var (
	scssVarDecl = regexp.MustCompile(`^[ \t]*\$([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*(.+?)\s*;\s*$`)
	scssVarRef  = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_-]*)`)
)

// convertVariables rewrites bare $var references in plain declaration
// context to CSS custom-property lookups, inlining the declared value
// as the fallback when it is known and literal. References inside
// @mixin/@function bodies, map literals and #{} interpolation are
// still meaningful SCSS and stay as written. Declarations themselves
// are kept; the compiler tolerates them and partial conversions stay
// debuggable.
func convertVariables(content string) (string, []string) {
	values := collectVariables(content)

	lines := strings.Split(content, "\n")
	var warnings []string
	warned := make(map[string]bool)

	scssDepth := 0   // depth of the innermost @mixin/@function block, 0 = none
	braceDepth := 0  // running brace depth across lines
	parenCarry := 0  // unbalanced parens carried across lines (map literals)

	for i, line := range lines {
		entering := scssBlockStart.MatchString(line)
		inScss := scssDepth > 0 || entering
		inMap := parenCarry > 0 || scssMapOpen.MatchString(line)

		switch {
		case mediaLinePattern.MatchString(line):
			lines[i] = inlineMediaVars(line, values, warned, &warnings)
		case !inScss && !inMap && !scssVarDecl.MatchString(line):
			lines[i] = rewriteVarRefs(line, values, warned, &warnings)
		}

		opens, closes := countBracesOutsideStrings(line)
		if entering && scssDepth == 0 {
			scssDepth = braceDepth + 1
		}
		braceDepth += opens - closes
		if scssDepth > 0 && braceDepth < scssDepth {
			scssDepth = 0
		}

		po, pc := countParensOutsideStrings(line)
		parenCarry += po - pc
		if parenCarry < 0 {
			parenCarry = 0
		}
	}

	return strings.Join(lines, "\n"), warnings
}

var (
	scssBlockStart = regexp.MustCompile(`^[ \t]*@(?:mixin|function|each|for|while|if|else)\b`)

	mediaLinePattern = regexp.MustCompile(`^[ \t]*@media\b`)

	// A variable declaration whose value opens a paren is a map
	// literal; its keys and values stay SCSS.
	scssMapOpen = regexp.MustCompile(`^[ \t]*\$[a-zA-Z_][a-zA-Z0-9_-]*\s*:\s*\(`)
)

func collectVariables(content string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		m := scssVarDecl.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(strings.TrimSuffix(m[2], "!default"))
		if strings.HasPrefix(value, "(") {
			// Map literal; not a substitutable scalar.
			continue
		}
		values[m[1]] = value
	}
	return values
}

func rewriteVarRefs(line string, values map[string]string, warned map[string]bool, warnings *[]string) string {
	matches := scssVarRef.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		if insideInterpolation(line, m[0]) {
			continue
		}
		name := line[m[2]:m[3]]
		out.WriteString(line[last:m[0]])
		if value, ok := values[name]; ok && !strings.Contains(value, "$") {
			out.WriteString("var(--" + name + ", " + value + ")")
		} else {
			out.WriteString("var(--" + name + ")")
			if !warned[name] {
				warned[name] = true
				*warnings = append(*warnings,
					fmt.Sprintf("no literal value found for $%s; emitted var(--%s) without fallback", name, name))
			}
		}
		last = m[1]
	}
	out.WriteString(line[last:])
	return out.String()
}

// inlineMediaVars substitutes declared literal values for $var
// references on a media-condition line. var() is not valid inside a
// media query, so the value is inlined where the breakpoint pass can
// normalize it; references without a literal value stay SCSS and are
// reported.
func inlineMediaVars(line string, values map[string]string, warned map[string]bool, warnings *[]string) string {
	matches := scssVarRef.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		if insideInterpolation(line, m[0]) {
			continue
		}
		name := line[m[2]:m[3]]
		value, ok := values[name]
		if !ok || strings.Contains(value, "$") {
			if !warned[name] {
				warned[name] = true
				*warnings = append(*warnings,
					fmt.Sprintf("no literal value for $%s in a media query; left as written", name))
			}
			continue
		}
		out.WriteString(line[last:m[0]])
		out.WriteString(value)
		last = m[1]
	}
	out.WriteString(line[last:])
	return out.String()
}

// insideInterpolation reports whether pos sits inside #{...} on the
// line.
func insideInterpolation(line string, pos int) bool {
	open := strings.LastIndex(line[:pos], "#{")
	if open < 0 {
		return false
	}
	return !strings.Contains(line[open:pos], "}")
}

func countBracesOutsideStrings(line string) (opens, closes int) {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if quote != 0 {
			if ch == '\\' && i+1 < len(line) {
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
			opens++
		case '}':
			closes++
		}
	}
	return opens, closes
}

func countParensOutsideStrings(line string) (opens, closes int) {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if quote != 0 {
			if ch == '\\' && i+1 < len(line) {
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
			opens++
		case ')':
			closes++
		}
	}
	return opens, closes
}

var urlRefPattern = regexp.MustCompile(`url\(\s*(['"]?)([^'")]+)['"]?\s*\)`)

// rewriteAssetPaths points relative url() references at the theme's
// public asset directory. Absolute paths, full URLs, data URIs and
// fragment references stay as written.
func (p *Processor) rewriteAssetPaths(content string) string {
	return urlRefPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := urlRefPattern.FindStringSubmatch(m)
		quote, ref := sub[1], strings.TrimSpace(sub[2])

		if ref == "" || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "#") ||
			strings.HasPrefix(ref, "data:") || strings.Contains(ref, "://") ||
			strings.Contains(ref, "(") {
			return m
		}

		tail := ref
		for strings.HasPrefix(tail, "./") || strings.HasPrefix(tail, "../") {
			tail = strings.TrimPrefix(tail, "./")
			tail = strings.TrimPrefix(tail, "../")
		}
		if idx := strings.Index(tail, "images/"); idx >= 0 {
			tail = tail[idx:]
		}

		return "url(" + quote + p.assetBase + "/" + tail + quote + ")"
	})
}

// normalizeWhitespace trims trailing space per line and collapses runs
// of blank lines, leaving exactly one trailing newline.
func normalizeWhitespace(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0

	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}

	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
