package report

import (
	"fmt"
	"io"

	"github.com/dealercraft/sbmigrate"
)

// Format selects how audit results are written.
type Format int

const (
	// FormatText prints violations in golangci-lint's issue format with
	// a summary, the default for terminals.
	FormatText Format = iota

	// FormatSummary prints only the violation counts, for recurring
	// reports where individual findings are noise.
	FormatSummary

	// FormatJSON emits the versioned JSON export schema.
	FormatJSON
)

// ParseFormat maps a --format flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text", "issues":
		return FormatText, nil
	case "summary":
		return FormatSummary, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown output format %q (want text, summary or json)", s)
}

// WriteAudit writes violations in the selected format.
func WriteAudit(w io.Writer, violations []sbmigrate.Violation, stats sbmigrate.ScanStats, format Format, opts Options) error {
	if format == FormatJSON {
		return WriteJSON(w, violations, stats)
	}

	r := NewReporter(w, opts)
	if format != FormatSummary {
		r.PrintViolations(violations)
	}
	r.PrintSummary(violations, stats)
	return nil
}
