package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealercraft/sbmigrate"
	"github.com/dealercraft/sbmigrate/internal/report"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert theme SCSS into Site Builder page stylesheets",
	Long: `Run the full migration: detect map components, copy missing template
partials, transform every source stylesheet and assemble css/sb-inside.scss
and css/sb-home.scss. Without --write the run is a preview and nothing
touches the disk.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runMigrate,
}

func init() {
	f := migrateCmd.Flags()
	f.Bool("write", false, "Write destination files and partial copies to disk")
	f.Bool("dry-run", false, "Force an in-memory run even when --write is set")
	f.Bool("copy-inherited", false, "Copy shared-source partials instead of inheriting them")
	f.Bool("interactive", false, "Prompt for partials that cannot be located automatically")
	f.Int("workers", 0, "Source files processed in parallel (0 = default)")
	f.Bool("strict", false, "Exit 1 on any warning (CI mode)")
}

// runMigrate is shared between `sbmigrate migrate` and the bare
// `sbmigrate` invocation.
func runMigrate(cmd *cobra.Command, _ []string) error {
	quiet := getBoolWithFallback("quiet", "quiet", false)
	verbose := getBoolWithFallback("verbose", "verbose", false)
	useColors := resolveColors()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	theme := buildTheme()
	opts := buildMigrateOptions(newLogger(verbose, quiet, useColors))
	if getBoolWithFallback("interactive", "migrate.interactive", false) {
		opts.Resolver = promptResolver(os.Stdin, os.Stdout)
	}

	res := sbmigrate.Migrate(ctx, theme, opts)

	if !quiet {
		report.PrintBatchSummary(os.Stdout, res, useColors)
		printMigrateStatus(os.Stdout, res, opts)
	}

	// Exit code logic - "Soft Gate" approach
	strict := getBoolWithFallback("strict", "migrate.strict", false)
	if strict {
		// Strict mode: any warning or failure fails the build
		if res.Err != nil || res.HasInvalidOutput() || countWarnings(res) > 0 {
			os.Exit(1)
		}
	} else if res.Err != nil || res.HasInvalidOutput() {
		// Default "Soft Gate" mode: only hard failures fail the build
		os.Exit(1)
	}

	return nil
}

func printMigrateStatus(w io.Writer, res sbmigrate.BatchResult, opts sbmigrate.Options) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Fprintln(w, "")
	switch {
	case res.Err != nil:
		red.Fprintln(w, "Migration finished with errors")
		fmt.Fprintf(w, "  %v\n", res.Err)
	case res.HasInvalidOutput():
		yellow.Fprintln(w, "Migration finished, but output failed syntax validation")
	default:
		green.Fprintln(w, "Migration finished")
	}

	if !opts.Write || opts.DryRun {
		fmt.Fprintln(w, "Dry run: no files were written (use --write to persist)")
	}
}

func countWarnings(res sbmigrate.BatchResult) int {
	total := 0
	for _, f := range res.Files {
		total += len(f.Warnings)
	}
	return total
}

// promptResolver asks on the terminal for a source path when a partial
// cannot be located automatically. An empty answer skips the partial.
func promptResolver(in io.Reader, out io.Writer) sbmigrate.PartialResolver {
	reader := bufio.NewReader(in)
	return func(theme sbmigrate.Theme, partial string, candidates []string) (string, bool) {
		fmt.Fprintf(out, "Partial %s was not found in %s or the shared source.\n", partial, theme.Root)
		for _, c := range candidates {
			fmt.Fprintf(out, "  candidate: %s\n", c)
		}
		fmt.Fprint(out, "Path to copy from (empty to skip): ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return "", false
		}
		return line, true
	}
}
