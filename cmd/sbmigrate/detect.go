package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealercraft/sbmigrate"
	"github.com/dealercraft/sbmigrate/internal/report"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "List map components the migration would relocate",
	Long: `Run map component detection on its own: explicit @import references,
shortcode registrations and template-part usage. Nothing is copied or
written; the command prints what a later migrate run would act on.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runDetect,
}

func runDetect(_ *cobra.Command, _ []string) error {
	quiet := getBoolWithFallback("quiet", "quiet", false)
	verbose := getBoolWithFallback("verbose", "verbose", false)
	useColors := resolveColors()

	theme := buildTheme()
	cfg := sbmigrate.DefaultDetectionConfig().ApplyOEM(sbmigrate.OEMFor(theme.OEM))

	detector := sbmigrate.NewDetector(cfg, newLogger(verbose, quiet, useColors))
	detector.DryRun = true

	locations, err := detector.DetectMapComponents(theme)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if !quiet {
		report.PrintLocations(os.Stdout, locations, useColors)
	}
	return nil
}
