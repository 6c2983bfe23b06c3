package sbmigrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultDetectionConfig(), nil)

	tests := []struct {
		name     string
		selector string
		want     Category
	}{
		{
			name:     "class header token",
			selector: ".header",
			want:     CategoryHeader,
		},
		{
			name:     "header with suffix",
			selector: ".header-wrap .logo",
			want:     CategoryHeader,
		},
		{
			name:     "site-header id",
			selector: "#site-header",
			want:     CategoryHeader,
		},
		{
			name:     "masthead",
			selector: ".masthead",
			want:     CategoryHeader,
		},
		{
			name:     "header element",
			selector: "header .inner",
			want:     CategoryHeader,
		},
		{
			name:     "page-header is content",
			selector: ".page-header-wrapper",
			want:     CategoryContent,
		},
		{
			name:     "footer class",
			selector: ".footer .links",
			want:     CategoryFooter,
		},
		{
			name:     "colophon",
			selector: "#colophon",
			want:     CategoryFooter,
		},
		{
			name:     "nav element with class",
			selector: "nav.primary",
			want:     CategoryNav,
		},
		{
			name:     "menu token",
			selector: ".menu-toggle",
			want:     CategoryNav,
		},
		{
			name:     "hamburger",
			selector: ".hamburger",
			want:     CategoryNav,
		},
		{
			name:     "navigate is not nav",
			selector: ".navigate-next",
			want:     CategoryContent,
		},
		{
			name:     "dropdown-menu stays content",
			selector: ".dropdown-menu",
			want:     CategoryContent,
		},
		{
			name:     "map component",
			selector: ".dealer-map",
			want:     CategoryMap,
		},
		{
			name:     "map row compound",
			selector: ".map-row .pin",
			want:     CategoryMap,
		},
		{
			name:     "sitemap is content",
			selector: ".sitemap",
			want:     CategoryContent,
		},
		{
			name:     "directions",
			selector: "#directions",
			want:     CategoryMap,
		},
		{
			name:     "plain content",
			selector: ".vehicle-card h2",
			want:     CategoryContent,
		},
		{
			name:     "any chrome sub-selector wins",
			selector: ".vehicle-card, .footer",
			want:     CategoryFooter,
		},
		{
			name:     "chrome beats map in group",
			selector: ".dealer-map, header",
			want:     CategoryHeader,
		},
		{
			name:     "empty selector",
			selector: "",
			want:     CategoryUnknown,
		},
		{
			name:     "whitespace only",
			selector: "   ",
			want:     CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Classify(tt.selector))
		})
	}
}

func TestCategoryExcluded(t *testing.T) {
	require.True(t, CategoryHeader.Excluded())
	require.True(t, CategoryFooter.Excluded())
	require.True(t, CategoryNav.Excluded())
	require.False(t, CategoryContent.Excluded())
	require.False(t, CategoryMap.Excluded())
	require.False(t, CategoryUnknown.Excluded())
}

func TestMatchExclusion(t *testing.T) {
	c := NewClassifier(DefaultDetectionConfig(), nil)

	tests := []struct {
		name      string
		selector  string
		wantCat   Category
		wantMatch string
		wantOK    bool
	}{
		{
			name:      "direct hit",
			selector:  ".site-header",
			wantCat:   CategoryHeader,
			wantMatch: ".site-header",
			wantOK:    true,
		},
		{
			name:      "match inside group",
			selector:  ".content, .navbar-fixed",
			wantCat:   CategoryNav,
			wantMatch: ".navbar-",
			wantOK:    true,
		},
		{
			name:     "no match",
			selector: ".gallery img",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, match, ok := c.MatchExclusion(tt.selector)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.wantCat, cat)
				require.Equal(t, tt.wantMatch, match)
			}
		})
	}
}

func TestSplitSelectorList(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     []string
	}{
		{
			name:     "simple group",
			selector: ".a, .b,.c",
			want:     []string{".a", ".b", ".c"},
		},
		{
			name:     "comma inside functional pseudo-class",
			selector: ":is(.a, .b) .c, .d",
			want:     []string{":is(.a, .b) .c", ".d"},
		},
		{
			name:     "single selector",
			selector: ".only",
			want:     []string{".only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, splitSelectorList(tt.selector))
		})
	}
}

func TestApplyOEM(t *testing.T) {
	cfg := DefaultDetectionConfig()

	t.Run("nil handler keeps defaults", func(t *testing.T) {
		got := cfg.ApplyOEM(nil)
		require.Equal(t, cfg.ImportKeywords, got.ImportKeywords)
		require.Empty(t, got.ImportPatterns)
	})

	t.Run("generic handler keeps defaults", func(t *testing.T) {
		got := cfg.ApplyOEM(OEMFor(""))
		require.Empty(t, got.ImportPatterns)
		require.Equal(t, cfg.PartialKeywords, got.PartialKeywords)
		require.False(t, got.ForceMapMigration)
	})

	t.Run("oem patterns replace keywords", func(t *testing.T) {
		got := cfg.ApplyOEM(OEMFor("toyota"))
		require.NotEmpty(t, got.ImportPatterns)
		require.Contains(t, got.PartialKeywords, "locator")
		require.False(t, got.ForceMapMigration)
	})

	t.Run("force migration carries over", func(t *testing.T) {
		got := cfg.ApplyOEM(OEMFor("jeep"))
		require.True(t, got.ForceMapMigration)
	})
}
