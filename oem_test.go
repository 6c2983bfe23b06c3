package sbmigrate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOEMFor(t *testing.T) {
	tests := []struct {
		name     string
		brand    string
		handler  string
		force    bool
		patterns bool
	}{
		{name: "empty falls back to generic", brand: "", handler: "generic"},
		{name: "unknown falls back to generic", brand: "subaru", handler: "generic"},
		{name: "toyota", brand: "toyota", handler: "toyota", patterns: true},
		{name: "lexus shares toyota handler", brand: "lexus", handler: "toyota", patterns: true},
		{name: "case insensitive", brand: "Toyota", handler: "toyota", patterns: true},
		{name: "surrounding space trimmed", brand: "  honda ", handler: "honda", patterns: true},
		{name: "acura shares honda handler", brand: "acura", handler: "honda", patterns: true},
		{name: "stellantis forces migration", brand: "stellantis", handler: "stellantis", force: true, patterns: true},
		{name: "jeep is stellantis", brand: "jeep", handler: "stellantis", force: true, patterns: true},
		{name: "ram is stellantis", brand: "RAM", handler: "stellantis", force: true, patterns: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := OEMFor(tt.brand)
			require.Equal(t, tt.handler, h.Name())
			require.Equal(t, tt.force, h.ForceMapMigration())
			if tt.patterns {
				require.NotEmpty(t, h.MapPatterns())
				require.NotEmpty(t, h.PartialKeywords())
			} else {
				require.Empty(t, h.MapPatterns())
				require.Empty(t, h.PartialKeywords())
			}
		})
	}
}

func TestOEMPatternsCompile(t *testing.T) {
	for _, brand := range []string{"toyota", "honda", "stellantis"} {
		for _, pattern := range OEMFor(brand).MapPatterns() {
			_, err := regexp.Compile(pattern)
			require.NoError(t, err, "brand %s pattern %q", brand, pattern)
		}
	}
}

func TestOEMPatternMatching(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		ref   string
		want  bool
	}{
		{name: "toyota store locator", brand: "toyota", ref: "components/store-locator", want: true},
		{name: "toyota dealerlocator without dash", brand: "toyota", ref: "dealerlocator.scss", want: true},
		{name: "toyota plain map", brand: "toyota", ref: "_map", want: true},
		{name: "toyota sitemap not matched", brand: "toyota", ref: "sitemap", want: false},
		{name: "honda directions", brand: "honda", ref: "partials/directions", want: true},
		{name: "honda map suffix", brand: "honda", ref: "map-embed.scss", want: true},
		{name: "stellantis locations", brand: "stellantis", ref: "modules/locations", want: true},
		{name: "stellantis header not matched", brand: "stellantis", ref: "header", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := false
			for _, pattern := range OEMFor(tt.brand).MapPatterns() {
				if regexp.MustCompile(pattern).MatchString(tt.ref) {
					matched = true
					break
				}
			}
			require.Equal(t, tt.want, matched)
		})
	}
}
