package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dealercraft/sbmigrate"
)

func TestBuildCaretIndicator(t *testing.T) {
	tests := []struct {
		name       string
		sourceLine string
		column     int
		want       string
	}{
		{
			name:       "spaces only",
			sourceLine: "    .footer a {",
			column:     5,
			want:       "    ^",
		},
		{
			name:       "tabs preserved",
			sourceLine: "\t\t.site-header {",
			column:     3,
			want:       "\t\t^",
		},
		{
			name:       "start of line",
			sourceLine: ".header {",
			column:     1,
			want:       "^",
		},
		{
			name:       "column 0 fallback",
			sourceLine: "some line",
			column:     0,
			want:       "^",
		},
		{
			name:       "column beyond line length",
			sourceLine: "short",
			column:     100,
			want:       "     ^",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, buildCaretIndicator(tt.sourceLine, tt.column))
		})
	}
}

func testViolations() []sbmigrate.Violation {
	return []sbmigrate.Violation{
		{
			FromCheck:   sbmigrate.CheckChromeExclusion,
			Text:        `header selector ".header" will be dropped by migration`,
			Severity:    sbmigrate.SeverityWarning,
			SourceLines: []string{".header {"},
			Pos:         sbmigrate.ViolationPos{Filename: "css/style.scss", Line: 12, Column: 1},
			Category:    sbmigrate.CategoryHeader,
			Selector:    ".header",
		},
		{
			FromCheck:   sbmigrate.CheckChromeExclusion,
			Text:        `footer selector ".footer a" will be dropped by migration`,
			Severity:    sbmigrate.SeverityWarning,
			SourceLines: []string{"    .footer a {"},
			Pos:         sbmigrate.ViolationPos{Filename: "css/style.scss", Line: 3, Column: 5},
			Category:    sbmigrate.CategoryFooter,
			Selector:    ".footer a",
		},
	}
}

func TestPrintViolations(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{w: &buf, printLines: true, printCheckName: true}

	r.PrintViolations(testViolations())

	want := "css/style.scss:3:5: footer selector \".footer a\" will be dropped by migration (chrome-exclusion)\n" +
		"\t    .footer a {\n" +
		"\t    ^\n" +
		"css/style.scss:12:1: header selector \".header\" will be dropped by migration (chrome-exclusion)\n" +
		"\t.header {\n" +
		"\t^\n"
	require.Equal(t, want, buf.String())
}

func TestPrintViolationsCompact(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{w: &buf}

	r.PrintViolations(testViolations()[:1])

	want := "css/style.scss:12:1: header selector \".header\" will be dropped by migration\n"
	require.Equal(t, want, buf.String())
}

func TestPrintViolationsDoesNotMutateInput(t *testing.T) {
	violations := testViolations()
	var buf bytes.Buffer
	r := &Reporter{w: &buf}
	r.PrintViolations(violations)

	require.Equal(t, 12, violations[0].Pos.Line)
	require.Equal(t, 3, violations[1].Pos.Line)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{w: &buf}

	r.PrintSummary(testViolations(), sbmigrate.ScanStats{FilesScanned: 3})

	out := buf.String()
	require.Contains(t, out, "2 violations in 3 files:")
	require.Contains(t, out, "* header: 1\n")
	require.Contains(t, out, "* footer: 1\n")
	require.Contains(t, out, "Hint: move shared styles out of chrome selectors")
}

func TestPrintSummaryMixedSeverities(t *testing.T) {
	violations := testViolations()
	violations[0].Severity = sbmigrate.SeverityError

	var buf bytes.Buffer
	r := &Reporter{w: &buf}
	r.PrintSummary(violations, sbmigrate.ScanStats{FilesScanned: 1})

	require.Contains(t, buf.String(), "2 violations (1 error, 1 warning) in 1 file:")
}

func TestPrintSummaryClean(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{w: &buf}
	r.PrintSummary(nil, sbmigrate.ScanStats{FilesScanned: 2})

	out := buf.String()
	require.Contains(t, out, "0 violations in 2 files:")
	require.NotContains(t, out, "Hint:")
}

func TestShouldUseColorsForced(t *testing.T) {
	require.True(t, shouldUseColors(Options{UseColors: true}))

	t.Setenv("FORCE_COLOR", "1")
	require.True(t, shouldUseColors(Options{}))
}

func TestPluralizeCount(t *testing.T) {
	require.Equal(t, "1 violation", pluralizeCount(1, "violation", "violations"))
	require.Equal(t, "0 violations", pluralizeCount(0, "violation", "violations"))
	require.Equal(t, "5 files", pluralizeCount(5, "file", "files"))
}
