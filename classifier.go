package sbmigrate

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Category labels a style rule by the page region its selector targets.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryContent
	CategoryHeader
	CategoryFooter
	CategoryNav
	CategoryMap
)

func (c Category) String() string {
	switch c {
	case CategoryContent:
		return "content"
	case CategoryHeader:
		return "header"
	case CategoryFooter:
		return "footer"
	case CategoryNav:
		return "navigation"
	case CategoryMap:
		return "map"
	default:
		return "unknown"
	}
}

// Excluded reports whether rules in this category are dropped from page
// stylesheets. Site Builder renders header, footer and navigation
// chrome itself, so migrated styles for those regions would collide.
func (c Category) Excluded() bool {
	return c == CategoryHeader || c == CategoryFooter || c == CategoryNav
}

// SelectorPattern ties a compiled selector regexp to the category it
// assigns.
type SelectorPattern struct {
	Category Category
	Pattern  *regexp.Regexp
}

// tokenPattern matches name at the start of a class or id token, so
// .header and .header-wrap match but .page-header-wrapper does not.
func tokenPattern(cat Category, name string) SelectorPattern {
	return SelectorPattern{
		Category: cat,
		Pattern:  regexp.MustCompile(`(?i)[.#]` + regexp.QuoteMeta(name) + `(?:[-_]|\b)`),
	}
}

// elementPattern matches a bare tag name standing alone in the selector.
func elementPattern(cat Category, tag string) SelectorPattern {
	return SelectorPattern{
		Category: cat,
		Pattern:  regexp.MustCompile(`(?i)(?:^|[\s>~+,(])` + tag + `(?:$|[\s>~+.:#\[(),])`),
	}
}

// defaultExclusionPatterns tags header/footer/nav chrome selectors.
// The set leans permissive: an over-excluded content rule can be
// restored by hand, a leaked chrome rule collides with the chrome Site
// Builder renders itself.
var defaultExclusionPatterns = []SelectorPattern{
	// Header chrome
	tokenPattern(CategoryHeader, "header"),
	tokenPattern(CategoryHeader, "site-header"),
	tokenPattern(CategoryHeader, "masthead"),
	tokenPattern(CategoryHeader, "topbar"),
	elementPattern(CategoryHeader, "header"),

	// Footer chrome
	tokenPattern(CategoryFooter, "footer"),
	tokenPattern(CategoryFooter, "site-footer"),
	tokenPattern(CategoryFooter, "colophon"),
	elementPattern(CategoryFooter, "footer"),

	// Navigation chrome
	tokenPattern(CategoryNav, "nav"),
	tokenPattern(CategoryNav, "navbar"),
	tokenPattern(CategoryNav, "navigation"),
	tokenPattern(CategoryNav, "menu"),
	tokenPattern(CategoryNav, "hamburger"),
	elementPattern(CategoryNav, "nav"),
}

// defaultMapPatterns tags map-component selectors. The map token must
// stand alone inside the class name: .dealer-map and .map-row match,
// .sitemap stays content.
var defaultMapPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[.#](?:[a-z0-9]+[-_])*map(?:[-_][a-z0-9]+)*(?:[-_]|\b)`),
	regexp.MustCompile(`(?i)[.#]directions(?:[-_]|\b)`),
	regexp.MustCompile(`(?i)[.#]locations?(?:[-_]|\b)`),
}

// DetectionConfig carries the pattern tables shared by the classifier,
// the audit scan and the map detector. Start from
// DefaultDetectionConfig; the zero value matches nothing.
type DetectionConfig struct {
	// ExclusionPatterns tag header/footer/nav chrome. Any sub-selector
	// match excludes the whole rule.
	ExclusionPatterns []SelectorPattern

	// MapPatterns tag selectors that style map components.
	MapPatterns []*regexp.Regexp

	// ImportKeywords match @import paths that pull in map styles.
	// Ignored when ImportPatterns is set.
	ImportKeywords []string

	// ImportPatterns, when non-nil, fully replace ImportKeywords. Set
	// by OEM handlers with non-standard naming. Each entry is a
	// regular expression matched against the raw @import reference.
	ImportPatterns []string

	// PartialKeywords match template-part slugs that render map markup.
	PartialKeywords []string

	// ShortcodeTag is the registered shortcode the detector resolves to
	// a PHP handler function.
	ShortcodeTag string

	// MaxIncludeFiles bounds how many PHP files the detector reads when
	// chasing include/require chains. Guards against include cycles.
	MaxIncludeFiles int

	// ForceMapMigration treats explicitly imported map SCSS as if it
	// were shortcode-derived, so its content is still relocated into
	// the page files. Set per OEM.
	ForceMapMigration bool
}

const defaultMaxIncludeFiles = 100

// DefaultDetectionConfig returns the generic detection tables used when
// no OEM override applies.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		ExclusionPatterns: defaultExclusionPatterns,
		MapPatterns:       defaultMapPatterns,
		ImportKeywords:    []string{"map", "maps", "location", "locations", "directions"},
		PartialKeywords:   []string{"map", "maps", "location", "locations", "directions"},
		ShortcodeTag:      "dealer-map",
		MaxIncludeFiles:   defaultMaxIncludeFiles,
	}
}

// ApplyOEM overlays brand-specific overrides onto the generic tables.
// OEM patterns replace the generic lists rather than extend them.
func (c DetectionConfig) ApplyOEM(h OEMHandler) DetectionConfig {
	if h == nil {
		return c
	}
	if patterns := h.MapPatterns(); len(patterns) > 0 {
		c.ImportPatterns = patterns
	}
	if keywords := h.PartialKeywords(); len(keywords) > 0 {
		c.PartialKeywords = keywords
	}
	if h.ForceMapMigration() {
		c.ForceMapMigration = true
	}
	return c
}

// Classifier assigns selectors to page-region categories.
type Classifier struct {
	cfg DetectionConfig
	log *zap.Logger
}

func NewClassifier(cfg DetectionConfig, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{cfg: cfg, log: log.Named("classifier")}
}

// Classify maps a selector to a category. Comma-separated groups are
// checked per sub-selector and any chrome match wins, so a rule shared
// between content and chrome is excluded rather than kept. Empty or
// unparseable selectors come back CategoryUnknown, which is never
// excluded.
func (c *Classifier) Classify(selector string) Category {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return CategoryUnknown
	}

	if cat, match, ok := c.MatchExclusion(selector); ok {
		c.log.Debug("selector excluded",
			zap.String("selector", selector),
			zap.String("match", match),
			zap.Stringer("category", cat))
		return cat
	}

	for _, sub := range splitSelectorList(selector) {
		for _, re := range c.cfg.MapPatterns {
			if re.MatchString(sub) {
				return CategoryMap
			}
		}
	}

	return CategoryContent
}

// MatchExclusion returns the chrome category and the matched selector
// fragment when any comma-separated sub-selector hits an exclusion
// pattern.
func (c *Classifier) MatchExclusion(selector string) (Category, string, bool) {
	for _, sub := range splitSelectorList(selector) {
		for _, p := range c.cfg.ExclusionPatterns {
			if m := p.Pattern.FindString(sub); m != "" {
				return p.Category, strings.TrimSpace(m), true
			}
		}
	}
	return CategoryUnknown, "", false
}

// splitSelectorList splits a selector group on commas, leaving commas
// inside :is()/:not() arguments alone.
func splitSelectorList(s string) []string {
	var parts []string
	var current strings.Builder
	depth := 0

	for _, r := range s {
		switch r {
		case '(':
			depth++
			current.WriteRune(r)
		case ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(r)
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			} else {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}

	if trailing := strings.TrimSpace(current.String()); trailing != "" {
		parts = append(parts, trailing)
	}

	return parts
}
