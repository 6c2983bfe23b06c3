package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dealercraft/sbmigrate"
)

// Options configure the audit reporters.
type Options struct {
	// UseColors forces colored output. Unset, colors are auto-detected
	// from the environment and terminal.
	UseColors bool

	// PrintSourceLines echoes the offending source line under each
	// violation with a caret marking the matched fragment.
	PrintSourceLines bool

	// PrintCheckName appends the originating check in parentheses, the
	// way golangci-lint prints linter names.
	PrintCheckName bool
}

// Reporter prints audit violations in golangci-lint's issue format:
// file:line:col: message (check).
type Reporter struct {
	w              io.Writer
	useColors      bool
	printLines     bool
	printCheckName bool
}

func NewReporter(w io.Writer, opts Options) *Reporter {
	return &Reporter{
		w:              w,
		useColors:      shouldUseColors(opts),
		printLines:     opts.PrintSourceLines,
		printCheckName: opts.PrintCheckName,
	}
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors(opts Options) bool {
	// Explicit flag wins
	if opts.UseColors {
		return true
	}

	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// GitHub Actions supports colors
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		return true
	}

	return false
}

// PrintViolations outputs violations sorted by file, line and column.
func (r *Reporter) PrintViolations(violations []sbmigrate.Violation) {
	sorted := make([]sbmigrate.Violation, len(violations))
	copy(sorted, violations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Pos.Filename != sorted[j].Pos.Filename {
			return sorted[i].Pos.Filename < sorted[j].Pos.Filename
		}
		if sorted[i].Pos.Line != sorted[j].Pos.Line {
			return sorted[i].Pos.Line < sorted[j].Pos.Line
		}
		return sorted[i].Pos.Column < sorted[j].Pos.Column
	})

	for _, v := range sorted {
		r.printViolation(v)
	}
}

// printViolation formats one finding as file:line:col: message (check).
func (r *Reporter) printViolation(v sbmigrate.Violation) {
	location := fmt.Sprintf("%s:%d:%d:", v.Pos.Filename, v.Pos.Line, v.Pos.Column)

	checkSuffix := ""
	if r.printCheckName {
		checkSuffix = fmt.Sprintf(" (%s)", v.FromCheck)
	}

	fmt.Fprintf(r.w, "%s %s%s\n",
		RenderStyle(StyleCyan, location, r.useColors),
		v.Text,
		RenderStyle(StyleGray, checkSuffix, r.useColors))

	if r.printLines && len(v.SourceLines) > 0 {
		for _, line := range v.SourceLines {
			fmt.Fprintf(r.w, "\t%s\n", line)
		}

		caret := buildCaretIndicator(v.SourceLines[0], v.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", RenderStyle(StyleYellow, caret, r.useColors))
	}
}

// buildCaretIndicator creates the "^" indicator aligned with the column.
// Tabs in the prefix are echoed as tabs so the caret lines up however
// the terminal expands them.
func buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}
	prefix := sourceLine[:prefixLen]

	var padding strings.Builder
	for _, ch := range prefix {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}
	return padding.String() + "^"
}

// PrintSummary outputs the violation count with a per-category
// breakdown, so a theme author sees at a glance how much header, footer
// and navigation styling the migration will drop.
func (r *Reporter) PrintSummary(violations []sbmigrate.Violation, stats sbmigrate.ScanStats) {
	var errors, warnings int
	for _, v := range violations {
		switch v.Severity {
		case sbmigrate.SeverityError:
			errors++
		case sbmigrate.SeverityWarning:
			warnings++
		}
	}

	fmt.Fprintln(r.w, "")
	total := pluralizeCount(len(violations), "violation", "violations")
	switch {
	case errors > 0 && warnings > 0:
		fmt.Fprintf(r.w, "%s (%s, %s) in %s:\n",
			total,
			pluralizeCount(errors, "error", "errors"),
			pluralizeCount(warnings, "warning", "warnings"),
			pluralizeCount(stats.FilesScanned, "file", "files"))
	default:
		fmt.Fprintf(r.w, "%s in %s:\n",
			total, pluralizeCount(stats.FilesScanned, "file", "files"))
	}

	categoryCounts := make(map[sbmigrate.Category]int)
	for _, v := range violations {
		categoryCounts[v.Category]++
	}
	for _, cat := range []sbmigrate.Category{
		sbmigrate.CategoryHeader,
		sbmigrate.CategoryFooter,
		sbmigrate.CategoryNav,
	} {
		if n := categoryCounts[cat]; n > 0 {
			fmt.Fprintf(r.w, "* %s: %d\n", cat, n)
		}
	}

	if len(violations) > 0 {
		fmt.Fprintln(r.w, "")
		fmt.Fprintln(r.w, RenderStyle(StyleGray,
			"Hint: move shared styles out of chrome selectors before migrating", r.useColors))
	}
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}
