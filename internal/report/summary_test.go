package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dealercraft/sbmigrate"
)

func TestPrintBatchSummary(t *testing.T) {
	res := sbmigrate.BatchResult{
		Files: []sbmigrate.TransformationResult{
			{
				SourcePath:         "css/style.scss",
				ExcludedRuleCount:  3,
				UnrecognizedMixins: []string{"retro-border"},
				Passes:             2,
				Warnings:           []string{`unrecognized mixin "retro-border" left in place`},
			},
		},
		Destinations: []sbmigrate.DestinationFile{
			{
				Path:        "css/sb-inside.scss",
				Content:     ".a { top: 0; }\n",
				Sources:     []string{"css/style.scss"},
				SyntaxValid: true,
			},
			{
				Path:    "css/sb-home.scss",
				Content: ".b { top: 0",
				Sources: []string{"css/style.scss"},
			},
		},
		MapLocations: []sbmigrate.MapComponentLocation{
			{
				Kind:            sbmigrate.ImplicitShortcodeDerived,
				SCSSPath:        "css/_map.scss",
				TemplatePartial: "partials/map.php",
			},
			{
				Kind:      sbmigrate.ExplicitImport,
				ImportRef: "map",
			},
		},
		Partials: []sbmigrate.PartialCopyResult{
			{
				Partial:    "partials/map.php",
				Status:     sbmigrate.PartialSkippedInheritance,
				SourcePath: "/shared/partials/map.php",
			},
		},
	}

	var buf bytes.Buffer
	PrintBatchSummary(&buf, res, false)
	out := buf.String()

	require.Contains(t, out, "Source files")
	require.Contains(t, out, "css/style.scss")

	require.Contains(t, out, "Destination files")
	require.Contains(t, out, "css/sb-inside.scss")
	require.Contains(t, out, "css/sb-home.scss")
	require.Contains(t, out, "INVALID")

	require.Contains(t, out, "Map components")
	require.Contains(t, out, "implicit-shortcode-derived")
	require.Contains(t, out, "css/_map.scss")
	require.Contains(t, out, "(unresolved)")

	require.Contains(t, out, "Template partials")
	require.Contains(t, out, "skipped-inheritance")

	require.Contains(t, out, "Warnings")
	require.Contains(t, out, `css/style.scss: unrecognized mixin "retro-border" left in place`)
}

func TestPrintLocations(t *testing.T) {
	locations := []sbmigrate.MapComponentLocation{
		{
			Kind:            sbmigrate.ImplicitShortcodeDerived,
			SCSSPath:        "css/_map-canvas.scss",
			TemplatePartial: "partials/map-canvas.php",
			Inherited:       true,
		},
	}

	var buf bytes.Buffer
	PrintLocations(&buf, locations, false)
	out := buf.String()

	require.Contains(t, out, "Map components")
	require.Contains(t, out, "implicit-shortcode-derived")
	require.Contains(t, out, "css/_map-canvas.scss")
	require.Contains(t, out, "yes")
}

func TestPrintLocationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintLocations(&buf, nil, false)

	require.Contains(t, buf.String(), "(none detected)")
}

func TestPrintBatchSummaryMinimal(t *testing.T) {
	res := sbmigrate.BatchResult{
		Destinations: []sbmigrate.DestinationFile{
			{Path: "css/sb-inside.scss", SyntaxValid: true},
			{Path: "css/sb-home.scss", SyntaxValid: true},
		},
	}

	var buf bytes.Buffer
	PrintBatchSummary(&buf, res, false)
	out := buf.String()

	require.Contains(t, out, "Destination files")
	require.NotContains(t, out, "Source files")
	require.NotContains(t, out, "Map components")
	require.NotContains(t, out, "Template partials")
	require.NotContains(t, out, "Warnings")
}
