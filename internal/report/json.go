package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dealercraft/sbmigrate"
)

// JSONOutput is the audit export schema. Versioned so downstream
// tooling can detect shape changes.
type JSONOutput struct {
	Version    string          `json:"version"`
	Timestamp  string          `json:"timestamp"`
	Summary    JSONSummary     `json:"summary"`
	Violations []JSONViolation `json:"violations"`
}

// JSONSummary contains high-level violation counts.
type JSONSummary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	FilesDiscovered int `json:"files_discovered"`
	FilesScanned    int `json:"files_scanned"`
	FilesSkipped    int `json:"files_skipped"`
}

// JSONViolation is a single audit finding.
type JSONViolation struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Check    string `json:"check"`
	Category string `json:"category"`
	Selector string `json:"selector"`
	Source   string `json:"source,omitempty"`
}

// WriteJSON writes the audit result as indented JSON.
func WriteJSON(w io.Writer, violations []sbmigrate.Violation, stats sbmigrate.ScanStats) error {
	output := buildJSONOutput(violations, stats)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func buildJSONOutput(violations []sbmigrate.Violation, stats sbmigrate.ScanStats) JSONOutput {
	var errors, warnings int
	for _, v := range violations {
		switch v.Severity {
		case sbmigrate.SeverityError:
			errors++
		case sbmigrate.SeverityWarning:
			warnings++
		}
	}

	jsonViolations := make([]JSONViolation, len(violations))
	for i, v := range violations {
		source := ""
		if len(v.SourceLines) > 0 {
			source = v.SourceLines[0]
		}
		jsonViolations[i] = JSONViolation{
			File:     v.Pos.Filename,
			Line:     v.Pos.Line,
			Column:   v.Pos.Column,
			Severity: v.Severity,
			Message:  v.Text,
			Check:    v.FromCheck,
			Category: v.Category.String(),
			Selector: v.Selector,
			Source:   source,
		}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: time.Now().Format(time.RFC3339),
		Summary: JSONSummary{
			TotalViolations: len(violations),
			Errors:          errors,
			Warnings:        warnings,
			FilesDiscovered: stats.FilesDiscovered,
			FilesScanned:    stats.FilesScanned,
			FilesSkipped:    stats.FilesSkipped,
		},
		Violations: jsonViolations,
	}
}
