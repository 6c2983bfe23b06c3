package sbmigrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuditFiles(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "main.scss", `// chrome styles below
.header {
  color: red;
}

.content {
  margin: 0;
}

.footer a { color: blue; }
`)

	violations, stats, err := AuditFiles(
		[]string{filepath.Join(dir, "*.scss")}, DefaultDetectionConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesDiscovered)
	require.Equal(t, 1, stats.FilesScanned)
	require.Equal(t, 0, stats.FilesSkipped)
	require.Len(t, violations, 2)

	header := violations[0]
	require.Equal(t, CheckChromeExclusion, header.FromCheck)
	require.Equal(t, `header selector ".header" will be dropped by migration`, header.Text)
	require.Equal(t, SeverityWarning, header.Severity)
	require.Equal(t, 2, header.Pos.Line)
	require.Equal(t, 1, header.Pos.Column)
	require.Equal(t, CategoryHeader, header.Category)
	require.Equal(t, []string{".header {"}, header.SourceLines)
	require.Nil(t, header.LineRange)

	footer := violations[1]
	require.Equal(t, `footer selector ".footer a" will be dropped by migration`, footer.Text)
	require.Equal(t, 10, footer.Pos.Line)
	require.Equal(t, CategoryFooter, footer.Category)
}

func TestAuditMultiLineSelector(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "multi.scss", `.promo,
.navbar-fixed {
  top: 0;
}
`)

	violations, _, err := AuditFiles(
		[]string{filepath.Join(dir, "multi.scss")}, DefaultDetectionConfig(), nil)
	require.NoError(t, err)
	require.Len(t, violations, 1)

	v := violations[0]
	require.Equal(t, CategoryNav, v.Category)
	require.Equal(t, ".promo, .navbar-fixed", v.Selector)
	require.Equal(t, 1, v.Pos.Line)
	require.NotNil(t, v.LineRange)
	require.Equal(t, 1, v.LineRange.From)
	require.Equal(t, 2, v.LineRange.To)

	// The matched fragment sits on the brace line.
	require.Equal(t, 1, v.Pos.Column)
}

func TestAuditColumnOnBraceLine(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "col.scss", "  .site-footer { color: blue; }\n")

	violations, _, err := AuditFiles(
		[]string{filepath.Join(dir, "col.scss")}, DefaultDetectionConfig(), nil)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Equal(t, 3, violations[0].Pos.Column)
}

func TestAuditSkipsComments(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "comments.scss", `/*
.header {
  color: red;
}
*/
// .footer { color: blue; }
.content { margin: 0; }
`)

	violations, _, err := AuditFiles(
		[]string{filepath.Join(dir, "comments.scss")}, DefaultDetectionConfig(), nil)
	require.NoError(t, err)
	require.Empty(t, violations)
}

func TestAuditAtRulesNotFlagged(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "media.scss", `@import "nav-helpers";

@media (max-width: 768px) {
  .header {
    display: none;
  }
}
`)

	violations, _, err := AuditFiles(
		[]string{filepath.Join(dir, "media.scss")}, DefaultDetectionConfig(), nil)
	require.NoError(t, err)

	// The @import and @media headers are not selectors; the nested
	// header rule still is.
	require.Len(t, violations, 1)
	require.Equal(t, 4, violations[0].Pos.Line)
	require.Equal(t, CategoryHeader, violations[0].Category)
}

func TestAuditSkipsGeneratedStylesheets(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "bundle.min.css", ".header{color:red}\n")
	writeThemeFile(t, dir, "bundle.css.map", "{}\n")
	writeThemeFile(t, dir, "real.scss", ".footer { color: blue; }\n")

	violations, stats, err := AuditFiles(
		[]string{filepath.Join(dir, "*")}, DefaultDetectionConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, 3, stats.FilesDiscovered)
	require.Equal(t, 1, stats.FilesScanned)
	require.Equal(t, 2, stats.FilesSkipped)
	require.Len(t, violations, 1)
	require.Equal(t, CategoryFooter, violations[0].Category)
}

func TestAuditDuplicatePatterns(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "dup.scss", ".header { color: red; }\n")

	pattern := filepath.Join(dir, "*.scss")
	violations, stats, err := AuditFiles(
		[]string{pattern, pattern}, DefaultDetectionConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesScanned)
	require.Len(t, violations, 1)
}

func TestAuditBadPattern(t *testing.T) {
	_, _, err := AuditFiles([]string{"["}, DefaultDetectionConfig(), nil)
	require.Error(t, err)
}

func TestIsGeneratedStylesheet(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"css/bundle.min.css", true},
		{"css/bundle.min.scss", true},
		{"css/bundle.css.map", true},
		{"css/style.scss", false},
		{"css/minified.scss", false},
		{"css/style.css", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, isGeneratedStylesheet(tt.path), "path %q", tt.path)
	}
}

func TestMatchColumn(t *testing.T) {
	require.Equal(t, 3, matchColumn("  .header {", ".header"))
	require.Equal(t, 1, matchColumn(".footer {", ".missing"))
	require.Equal(t, 1, matchColumn(".footer {", ""))
}

func TestGetRelativePath(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, "style.scss", GetRelativePath(filepath.Join(cwd, "style.scss")))
}
