package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealercraft/sbmigrate"
	"github.com/dealercraft/sbmigrate/internal/report"
)

var auditCmd = &cobra.Command{
	Use:   "audit [patterns...]",
	Short: "Scan stylesheets for selectors the migration would drop",
	Long: `Check theme stylesheets for header, footer and navigation selectors.
Rules under those selectors are excluded during migration; the audit
reports them ahead of time so shared styles can be moved out first.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.StringSlice("patterns", nil, "Glob patterns for stylesheets to audit")
	f.String("format", "", "Output format: text|summary|json")
	f.Bool("strict", false, "Exit 1 on any violation (CI mode)")
	f.Bool("print-lines", true, "Show source lines with violations")
	f.Bool("print-check-name", true, "Show (chrome-exclusion) suffix on violations")
}

func runAudit(_ *cobra.Command, args []string) error {
	quiet := getBoolWithFallback("quiet", "quiet", false)
	verbose := getBoolWithFallback("verbose", "verbose", false)
	useColors := resolveColors()

	theme := buildTheme()
	patterns := args
	if len(patterns) == 0 {
		patterns = auditPatterns(theme)
	}

	cfg := sbmigrate.DefaultDetectionConfig().ApplyOEM(sbmigrate.OEMFor(theme.OEM))

	violations, stats, err := sbmigrate.AuditFiles(patterns, cfg, newLogger(verbose, quiet, useColors))
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	format, err := report.ParseFormat(getStringWithFallback("format", "audit.format", ""))
	if err != nil {
		return err
	}

	if !quiet {
		err := report.WriteAudit(os.Stdout, violations, stats, format, report.Options{
			UseColors:        useColors,
			PrintSourceLines: getBoolWithFallback("print-lines", "audit.print-lines", true),
			PrintCheckName:   getBoolWithFallback("print-check-name", "audit.print-check-name", true),
		})
		if err != nil {
			return err
		}
	}

	// Exit code logic - "Soft Gate" approach
	strict := getBoolWithFallback("strict", "audit.strict", false)
	if strict {
		// Strict mode: any violation (error or warning) fails the build
		if len(violations) > 0 {
			os.Exit(1)
		}
	} else if countErrors(violations) > 0 {
		// Default "Soft Gate" mode: only errors fail the build
		os.Exit(1)
	}

	return nil
}

func countErrors(violations []sbmigrate.Violation) int {
	n := 0
	for _, v := range violations {
		if v.Severity == sbmigrate.SeverityError {
			n++
		}
	}
	return n
}
