package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sbmigrate",
	Short: "SCSS migration tool for Site Builder dealer themes",
	Long: `Convert a dealer theme's legacy SCSS into the Site Builder page
stylesheets sb-inside.scss and sb-home.scss. Header, footer and
navigation rules are dropped, legacy mixins are expanded to plain CSS
and map components reachable only through shortcodes are relocated
into the page files.`,
	// Default behavior: run migrate when no subcommand is given.
	// We must call loadConfig here because PreRunE of migrateCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runMigrate(migrateCmd, nil)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output (exit code only)")
	rootCmd.PersistentFlags().String("theme", ".", "Theme root directory")
	rootCmd.PersistentFlags().String("shared-root", "", "Shared parent theme directory")
	rootCmd.PersistentFlags().String("oem", "", "OEM brand of the dealer (toyota, honda, stellantis, ...)")
	rootCmd.PersistentFlags().Bool("color", false, "Force color output")
	rootCmd.PersistentFlags().String("config", ".sbmigrate.yaml", "Config file path")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
