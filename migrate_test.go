package sbmigrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateInMemory(t *testing.T) {
	root := t.TempDir()
	shared := t.TempDir()
	theme := Theme{Root: root, SharedRoot: shared}

	writeThemeFile(t, root, "css/style.scss", `@import "map";
@import "fonts";

.header { color: red; }

.global-note { margin: 0; }
`)
	writeThemeFile(t, root, "css/home.scss", ".hero-banner { padding: 10px; }\n")
	writeThemeFile(t, root, "css/inside.scss", ".inside-page { padding: 20px; }\n")
	writeThemeFile(t, root, "css/_map.scss", ".map { height: 400px; }\n")
	writeThemeFile(t, root, "css/_map-widget.scss", ".map-widget { height: 300px; }\n")
	writeThemeFile(t, root, "functions.php", `<?php
add_shortcode('dealer-map', 'render_dealer_map');
function render_dealer_map() {
    get_template_part('partials/map-widget');
}
`)
	writeThemeFile(t, shared, "partials/map-widget.php", "<div class=\"map-widget\"></div>\n")

	res := Migrate(context.Background(), theme, Options{
		Workers:   2,
		Validator: newFallbackValidator(t),
	})
	require.NoError(t, res.Err)
	require.False(t, res.HasInvalidOutput())

	// One explicit import, one shortcode-derived component.
	require.Len(t, res.MapLocations, 2)
	require.Equal(t, ExplicitImport, res.MapLocations[0].Kind)
	require.Equal(t, ImplicitShortcodeDerived, res.MapLocations[1].Kind)

	// The partial lives in the shared source; inheritance covers it.
	require.Len(t, res.Partials, 1)
	require.Equal(t, PartialSkippedInheritance, res.Partials[0].Status)
	require.NoFileExists(t, res.Partials[0].DestPath)

	// Three sources in mapping order plus the joined map content.
	require.Len(t, res.Files, 4)
	require.Equal(t, theme.MainStylesheet(), res.Files[0].SourcePath)
	require.Equal(t, 1, res.Files[0].ExcludedRuleCount)
	require.Equal(t, mapComponentsSource, res.Files[3].SourcePath)

	require.Len(t, res.Destinations, 2)
	inside, home := res.Destinations[0], res.Destinations[1]
	require.Equal(t, theme.InsideStylesheet(), inside.Path)
	require.Equal(t, theme.HomeStylesheet(), home.Path)

	// Global content first, page content second, map content last.
	require.Equal(t, []string{
		theme.MainStylesheet(),
		filepath.Join(root, "css", "inside.scss"),
		mapComponentsSource,
	}, inside.Sources)
	require.Equal(t, []string{
		theme.MainStylesheet(),
		filepath.Join(root, "css", "home.scss"),
		mapComponentsSource,
	}, home.Sources)

	for _, dest := range res.Destinations {
		require.True(t, dest.SyntaxValid)
		require.Contains(t, dest.Content, ".global-note")
		require.Contains(t, dest.Content, ".map-widget")
		require.Contains(t, dest.Content, `@import "fonts";`)
		require.NotContains(t, dest.Content, `@import "map"`)
		require.NotContains(t, dest.Content, ".header")
	}
	require.Contains(t, inside.Content, ".inside-page")
	require.NotContains(t, inside.Content, ".hero-banner")
	require.Contains(t, home.Content, ".hero-banner")
	require.NotContains(t, home.Content, ".inside-page")

	// Nothing is written without Write.
	require.NoFileExists(t, theme.InsideStylesheet())
	require.NoFileExists(t, theme.HomeStylesheet())
}

func TestMigrateWrites(t *testing.T) {
	root := t.TempDir()
	theme := Theme{Root: root}
	writeThemeFile(t, root, "css/style.scss", ".global-note { margin: 0; }\n")

	res := Migrate(context.Background(), theme, Options{
		Write:     true,
		Validator: newFallbackValidator(t),
	})
	require.NoError(t, res.Err)

	for _, dest := range res.Destinations {
		data, err := os.ReadFile(dest.Path)
		require.NoError(t, err)
		require.Equal(t, dest.Content, string(data))
	}
}

func TestMigrateDryRunOverridesWrite(t *testing.T) {
	root := t.TempDir()
	theme := Theme{Root: root}
	writeThemeFile(t, root, "css/style.scss", ".global-note { margin: 0; }\n")

	res := Migrate(context.Background(), theme, Options{
		Write:     true,
		DryRun:    true,
		Validator: newFallbackValidator(t),
	})
	require.NoError(t, res.Err)
	require.NoFileExists(t, theme.InsideStylesheet())
	require.NoFileExists(t, theme.HomeStylesheet())
}

func TestMigrateOEMForcesMapMigration(t *testing.T) {
	root := t.TempDir()
	theme := Theme{Root: root, OEM: "jeep"}
	writeThemeFile(t, root, "css/style.scss", "@import \"map\";\n\n.note { margin: 0; }\n")
	writeThemeFile(t, root, "css/_map.scss", ".map-canvas { height: 420px; }\n")

	res := Migrate(context.Background(), theme, Options{
		Validator: newFallbackValidator(t),
	})
	require.NoError(t, res.Err)

	// The explicit import is recorded and additionally forced into a
	// migrated component.
	require.Len(t, res.MapLocations, 2)
	require.Empty(t, res.Partials)

	for _, dest := range res.Destinations {
		require.Contains(t, dest.Content, ".map-canvas")
		require.NotContains(t, dest.Content, "@import")
	}
}

func TestMigrateUnbalancedSource(t *testing.T) {
	root := t.TempDir()
	theme := Theme{Root: root}
	writeThemeFile(t, root, "css/style.scss", ".broken { color: red;\n")

	res := Migrate(context.Background(), theme, Options{
		Validator: newFallbackValidator(t),
	})

	// The batch completes; the bad output is flagged, not dropped.
	require.NoError(t, res.Err)
	require.Len(t, res.Files, 1)
	require.Contains(t, res.Files[0].Warnings,
		"unbalanced braces in source; excluded-rule scan was best-effort")

	require.True(t, res.HasInvalidOutput())
	for _, dest := range res.Destinations {
		require.False(t, dest.SyntaxValid)
		require.NotEmpty(t, dest.SyntaxError)
		require.Contains(t, dest.Content, ".broken")
	}
}

func TestMigrateEmptyTheme(t *testing.T) {
	theme := Theme{Root: t.TempDir()}

	res := Migrate(context.Background(), theme, Options{
		Validator: newFallbackValidator(t),
	})
	require.NoError(t, res.Err)
	require.Empty(t, res.MapLocations)
	require.Empty(t, res.Files)

	// Both page files are still reported, empty and valid.
	require.Len(t, res.Destinations, 2)
	for _, dest := range res.Destinations {
		require.Empty(t, dest.Content)
		require.True(t, dest.SyntaxValid)
	}
	require.False(t, res.HasInvalidOutput())
}

func TestHasInvalidOutput(t *testing.T) {
	valid := BatchResult{Destinations: []DestinationFile{
		{SyntaxValid: true}, {SyntaxValid: true},
	}}
	require.False(t, valid.HasInvalidOutput())

	mixed := BatchResult{Destinations: []DestinationFile{
		{SyntaxValid: true}, {SyntaxValid: false},
	}}
	require.True(t, mixed.HasInvalidOutput())

	require.False(t, BatchResult{}.HasInvalidOutput())
}
