package sbmigrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// LocationKind tells how a map component was discovered.
type LocationKind int

const (
	// ExplicitImport components are referenced by an @import in the
	// theme's stylesheets. The main style-inlining pass handles them;
	// this subsystem only records them and never writes their content
	// to destination files.
	ExplicitImport LocationKind = iota

	// ImplicitShortcodeDerived components are only reachable through
	// shortcode and template-part references. Their SCSS is actively
	// migrated into the destination page files.
	ImplicitShortcodeDerived
)

func (k LocationKind) String() string {
	switch k {
	case ExplicitImport:
		return "explicit-import"
	case ImplicitShortcodeDerived:
		return "implicit-shortcode-derived"
	}
	return fmt.Sprintf("LocationKind(%d)", int(k))
}

// MapComponentLocation describes where a map UI component lives in a
// theme checkout.
type MapComponentLocation struct {
	Kind LocationKind

	// SCSSPath is the resolved stylesheet on disk. Empty when the
	// reference could not be resolved to a file.
	SCSSPath string

	// ImportRef is the raw @import reference for explicit locations.
	ImportRef string

	// TemplatePartial is the template-part path ("partials/map") for
	// implicit locations.
	TemplatePartial string

	// ShortcodeHandler names the handler function the reference was
	// found in, when it came from the shortcode scan.
	ShortcodeHandler string

	// Inherited marks resolutions that landed in the shared parent
	// theme rather than the dealer theme.
	Inherited bool

	// DestinationFiles lists the page stylesheets the component's
	// SCSS is merged into. Set for implicit locations only.
	DestinationFiles []string
}

// Detector finds map components across a theme's import graph,
// shortcode registrations and template-part references.
type Detector struct {
	cfg DetectionConfig
	log *zap.Logger

	// Resolver, when set, is consulted for partials missing from both
	// the destination theme and the shared source.
	Resolver PartialResolver

	// CopyInherited copies partials found in the shared source instead
	// of leaving them to template inheritance. For builds that must
	// not depend on the shared tree.
	CopyInherited bool

	// DryRun reports copy decisions without touching the filesystem.
	DryRun bool
}

func NewDetector(cfg DetectionConfig, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{cfg: cfg, log: log.Named("detector")}
}

// DetectMapComponents runs the three detection phases and merges
// their results. The phases are independent: a theme can carry both
// explicit imports and shortcode-derived components at once, so
// every phase always runs.
func (d *Detector) DetectMapComponents(theme Theme) ([]MapComponentLocation, error) {
	explicit, err := d.scanExplicitImports(theme)
	if err != nil {
		return nil, err
	}

	refs, err := d.scanShortcodePartials(theme)
	if err != nil {
		return nil, err
	}

	implicit := d.deriveImplicit(theme, refs)
	implicit = d.dedupeAgainstImports(theme, implicit)

	locations := append(explicit, implicit...)

	if d.cfg.ForceMapMigration {
		locations = append(locations, d.forceImplicit(theme, explicit, implicit)...)
	}

	d.log.Info("map detection finished",
		zap.Int("explicit", len(explicit)),
		zap.Int("implicit", len(locations)-len(explicit)))
	return locations, nil
}

// Phase A: explicit import scan over the theme's main stylesheet.

func (d *Detector) scanExplicitImports(theme Theme) ([]MapComponentLocation, error) {
	main := theme.MainStylesheet()
	data, err := os.ReadFile(main)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", main, err)
	}

	matchers, err := d.importMatchers()
	if err != nil {
		return nil, err
	}

	var locations []MapComponentLocation
	for _, stmt := range importStmtPattern.FindAllString(string(data), -1) {
		for _, ref := range quotedStrings(stmt) {
			if !matchImportRef(ref, matchers, d.cfg.ImportKeywords) {
				continue
			}
			path, inherited := resolveImportPath(theme, filepath.Dir(main), ref)
			d.log.Debug("explicit map import",
				zap.String("ref", ref),
				zap.String("resolved", path),
				zap.Bool("inherited", inherited))
			locations = append(locations, MapComponentLocation{
				Kind:      ExplicitImport,
				ImportRef: ref,
				SCSSPath:  path,
				Inherited: inherited,
			})
		}
	}
	return locations, nil
}

func (d *Detector) importMatchers() ([]*regexp.Regexp, error) {
	matchers := make([]*regexp.Regexp, 0, len(d.cfg.ImportPatterns))
	for _, p := range d.cfg.ImportPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("import pattern %q: %w", p, err)
		}
		matchers = append(matchers, re)
	}
	return matchers, nil
}

// matchImportRef tests an @import reference against the OEM pattern
// set when one is configured, else against the generic keyword list
// with token-boundary matching.
func matchImportRef(ref string, patterns []*regexp.Regexp, keywords []string) bool {
	if len(patterns) > 0 {
		for _, re := range patterns {
			if re.MatchString(ref) {
				return true
			}
		}
		return false
	}
	return matchKeywordTokens(ref, keywords)
}

// matchKeywordTokens splits a path-like reference into tokens and
// compares each against the keyword list, so "map" matches
// "components/map-canvas" but not "sitemap".
func matchKeywordTokens(ref string, keywords []string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(ref), func(r rune) bool {
		return r == '/' || r == '\\' || r == '-' || r == '_' || r == '.'
	})
	for _, tok := range tokens {
		for _, kw := range keywords {
			if tok == kw {
				return true
			}
		}
	}
	return false
}

// resolveImportPath finds the stylesheet an @import reference points
// at, trying the Sass partial naming variants in the importing
// directory first and the shared style tree second.
func resolveImportPath(theme Theme, fromDir, ref string) (string, bool) {
	if dealt := resolveInDir(fromDir, ref); dealt != "" {
		return dealt, false
	}
	if shared := theme.SharedStyleDir(); shared != "" {
		if inh := resolveInDir(shared, ref); inh != "" {
			return inh, true
		}
	}
	return "", false
}

func resolveInDir(dir, ref string) string {
	base := filepath.Base(ref)
	sub := filepath.Dir(ref)
	candidates := []string{
		filepath.Join(dir, ref),
		filepath.Join(dir, ref+".scss"),
		filepath.Join(dir, sub, "_"+base+".scss"),
		filepath.Join(dir, sub, "_"+base),
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

// Phase B: shortcode and template-part scan.

// templateRef is one get_template_part call: slug plus optional name
// suffix, as in get_template_part("partials/map", "footer").
type templateRef struct {
	slug    string
	name    string
	handler string
}

func (r templateRef) partialPath() string {
	if r.name != "" {
		return r.slug + "-" + r.name
	}
	return r.slug
}

var (
	phpIncludePattern      = regexp.MustCompile(`(?:include|require)(?:_once)?[^;\n]*?['"]([^'"]+\.php)['"]`)
	templatePartPattern    = regexp.MustCompile(`get_template_part\(\s*['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)
	phpFunctionNamePattern = `[A-Za-z_][A-Za-z0-9_]*`
)

func (d *Detector) shortcodePattern() *regexp.Regexp {
	tag := regexp.QuoteMeta(d.cfg.ShortcodeTag)
	return regexp.MustCompile(`add_shortcode\(\s*['"]` + tag + `['"]\s*,\s*['"](` + phpFunctionNamePattern + `)['"]`)
}

// phpScan walks include/require references breadth-first with a hard
// file budget, so circular includes terminate.
type phpScan struct {
	budget  int
	visited map[string]bool
	files   []scannedFile
}

type scannedFile struct {
	path    string
	content string
}

func (d *Detector) scanShortcodePartials(theme Theme) ([]templateRef, error) {
	scan := &phpScan{
		budget:  d.cfg.MaxIncludeFiles,
		visited: make(map[string]bool),
	}
	if scan.budget <= 0 {
		scan.budget = defaultMaxIncludeFiles
	}

	d.followIncludes(theme, scan, theme.FunctionsFile())

	shortcodeRE := d.shortcodePattern()
	handlers := d.findHandlers(scan, shortcodeRE)

	// Themes that inherit the registration from the shared parent
	// have nothing local to find; scan the shared include trees for
	// the same signature before giving up.
	if len(handlers) == 0 && theme.SharedRoot != "" {
		for _, pattern := range []string{"includes/**/*.php", "inc/**/*.php", "functions.php"} {
			matches, err := doublestar.FilepathGlob(filepath.Join(theme.SharedRoot, pattern))
			if err != nil {
				continue
			}
			for _, m := range matches {
				d.followIncludes(theme, scan, m)
			}
		}
		handlers = d.findHandlers(scan, shortcodeRE)
	}

	if len(handlers) == 0 {
		d.log.Debug("no shortcode registration found",
			zap.String("tag", d.cfg.ShortcodeTag))
	}

	var refs []templateRef
	for _, h := range handlers {
		refs = append(refs, d.handlerTemplateRefs(scan, h)...)
	}
	refs = append(refs, d.fileScopeTemplateRefs(scan)...)
	return dedupeRefs(refs), nil
}

// followIncludes reads a file, records it and queues every
// include/require it references, within the scan budget.
func (d *Detector) followIncludes(theme Theme, scan *phpScan, path string) {
	queue := []string{path}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		abs, err := filepath.Abs(next)
		if err != nil {
			abs = next
		}
		if scan.visited[abs] {
			continue
		}
		if len(scan.files) >= scan.budget {
			d.log.Warn("include scan budget reached",
				zap.Int("budget", scan.budget))
			return
		}
		scan.visited[abs] = true

		data, err := os.ReadFile(next)
		if err != nil {
			continue
		}
		content := string(data)
		scan.files = append(scan.files, scannedFile{path: next, content: content})

		for _, m := range phpIncludePattern.FindAllStringSubmatch(content, -1) {
			if resolved := resolvePHPInclude(theme, filepath.Dir(next), m[1]); resolved != "" {
				queue = append(queue, resolved)
			}
		}
	}
}

func resolvePHPInclude(theme Theme, fromDir, ref string) string {
	candidates := []string{
		filepath.Join(fromDir, ref),
		filepath.Join(theme.Root, ref),
		filepath.Join(theme.Root, strings.TrimPrefix(ref, "/")),
	}
	if theme.SharedRoot != "" {
		candidates = append(candidates,
			filepath.Join(theme.SharedRoot, ref),
			filepath.Join(theme.SharedRoot, strings.TrimPrefix(ref, "/")))
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

func (d *Detector) findHandlers(scan *phpScan, re *regexp.Regexp) []string {
	var handlers []string
	seen := make(map[string]bool)
	for _, f := range scan.files {
		for _, m := range re.FindAllStringSubmatch(f.content, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				handlers = append(handlers, m[1])
				d.log.Debug("shortcode handler",
					zap.String("tag", d.cfg.ShortcodeTag),
					zap.String("handler", m[1]),
					zap.String("file", f.path))
			}
		}
	}
	return handlers
}

// handlerTemplateRefs extracts every template-part reference inside a
// handler's function body. All of them count as map references, since
// the handler is the map shortcode's renderer.
func (d *Detector) handlerTemplateRefs(scan *phpScan, handler string) []templateRef {
	bodyRE := regexp.MustCompile(`function\s+` + regexp.QuoteMeta(handler) + `\s*\([^)]*\)[^{]*\{`)
	var refs []templateRef
	for _, f := range scan.files {
		loc := bodyRE.FindStringIndex(f.content)
		if loc == nil {
			continue
		}
		body, ok := extractFunctionBody(f.content, loc[1]-1)
		if !ok {
			d.log.Warn("unterminated handler body",
				zap.String("handler", handler),
				zap.String("file", f.path))
			continue
		}
		for _, m := range templatePartPattern.FindAllStringSubmatch(body, -1) {
			refs = append(refs, templateRef{slug: m[1], name: m[2], handler: handler})
		}
	}
	return refs
}

// extractFunctionBody matches the brace block opening at start,
// ignoring braces inside quoted strings and comments.
func extractFunctionBody(content string, start int) (string, bool) {
	stripped := stripComments(content[start:])
	depth := 0
	var quote byte
	for i := 0; i < len(stripped); i++ {
		c := stripped[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return stripped[1:i], true
			}
		}
	}
	return "", false
}

// fileScopeTemplateRefs picks up keyword-matched template-part calls
// anywhere in the scanned files, which catches closure-registered
// handlers and partials rendered outside the shortcode path.
func (d *Detector) fileScopeTemplateRefs(scan *phpScan) []templateRef {
	var refs []templateRef
	for _, f := range scan.files {
		for _, m := range templatePartPattern.FindAllStringSubmatch(f.content, -1) {
			ref := templateRef{slug: m[1], name: m[2]}
			if matchKeywordTokens(ref.partialPath(), d.cfg.PartialKeywords) {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

func dedupeRefs(refs []templateRef) []templateRef {
	seen := make(map[string]bool)
	out := refs[:0]
	for _, r := range refs {
		key := r.partialPath()
		if !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}

// Phase C: derive SCSS paths from template-part paths.

// deriveImplicit maps each partials/X/Y template path to a css/X/Y.scss
// stylesheet, searching the dealer theme before the shared source.
func (d *Detector) deriveImplicit(theme Theme, refs []templateRef) []MapComponentLocation {
	var locations []MapComponentLocation
	for _, ref := range refs {
		scssPath, inherited := d.deriveSCSS(theme, ref)
		loc := MapComponentLocation{
			Kind:             ImplicitShortcodeDerived,
			TemplatePartial:  ref.partialPath() + ".php",
			ShortcodeHandler: ref.handler,
			SCSSPath:         scssPath,
			Inherited:        inherited,
			DestinationFiles: theme.DestinationFiles(),
		}
		if scssPath == "" {
			d.log.Warn("no stylesheet derived for template partial",
				zap.String("partial", loc.TemplatePartial))
		}
		locations = append(locations, loc)
	}
	return locations
}

func (d *Detector) deriveSCSS(theme Theme, ref templateRef) (string, bool) {
	// partials/X/Y maps to css/X/Y.scss; the slug-name combination is
	// preferred over the bare slug when both exist.
	stems := []string{ref.partialPath()}
	if ref.name != "" {
		stems = append(stems, ref.slug)
	}

	dirs := []struct {
		dir       string
		inherited bool
	}{
		{theme.StyleDir(), false},
		{theme.SharedStyleDir(), true},
	}
	for _, stem := range stems {
		rel := strings.TrimPrefix(stem, "partials/")
		for _, loc := range dirs {
			if loc.dir == "" {
				continue
			}
			if p := resolveInDir(loc.dir, rel); p != "" {
				return p, loc.inherited
			}
		}
	}
	return "", false
}

// dedupeAgainstImports drops implicit locations whose stylesheet is
// already imported by the theme's style or page files. Those are
// wired through the normal import path and migrating them again would
// duplicate their content.
func (d *Detector) dedupeAgainstImports(theme Theme, locations []MapComponentLocation) []MapComponentLocation {
	imported := make(map[string]bool)
	files := []string{
		theme.MainStylesheet(),
		filepath.Join(theme.StyleDir(), "inside.scss"),
		filepath.Join(theme.StyleDir(), "home.scss"),
		theme.InsideStylesheet(),
		theme.HomeStylesheet(),
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		for _, stmt := range importStmtPattern.FindAllString(string(data), -1) {
			for _, ref := range quotedStrings(stmt) {
				imported[importStem(ref)] = true
			}
		}
	}

	kept := locations[:0]
	for _, loc := range locations {
		if loc.SCSSPath != "" && imported[importStem(loc.SCSSPath)] {
			d.log.Debug("map stylesheet already imported",
				zap.String("scss", loc.SCSSPath))
			continue
		}
		kept = append(kept, loc)
	}
	return kept
}

// importStem normalizes a stylesheet reference to its bare stem:
// "css/_map-canvas.scss" and "map-canvas" compare equal.
func importStem(ref string) string {
	base := filepath.Base(ref)
	base = strings.TrimSuffix(base, ".scss")
	base = strings.TrimSuffix(base, ".css")
	base = strings.TrimPrefix(base, "_")
	return strings.ToLower(base)
}

// forceImplicit turns resolved explicit imports into implicit twins,
// for OEMs whose map only renders through the page files. Twins that
// duplicate an existing implicit location are dropped.
func (d *Detector) forceImplicit(theme Theme, explicit, implicit []MapComponentLocation) []MapComponentLocation {
	existing := make(map[string]bool, len(implicit))
	for _, loc := range implicit {
		if loc.SCSSPath != "" {
			existing[loc.SCSSPath] = true
		}
	}

	var twins []MapComponentLocation
	for _, loc := range explicit {
		if loc.SCSSPath == "" || existing[loc.SCSSPath] {
			continue
		}
		existing[loc.SCSSPath] = true
		d.log.Info("forcing migration of explicit import",
			zap.String("ref", loc.ImportRef),
			zap.String("scss", loc.SCSSPath))
		twins = append(twins, MapComponentLocation{
			Kind:             ImplicitShortcodeDerived,
			ImportRef:        loc.ImportRef,
			SCSSPath:         loc.SCSSPath,
			Inherited:        loc.Inherited,
			DestinationFiles: theme.DestinationFiles(),
		})
	}
	return twins
}
