package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/dealercraft/sbmigrate"
)

// PrintBatchSummary renders a migration batch as terminal tables: the
// per-source transformation stats, one row per destination file, plus
// the detected map components and the partial copy decisions when
// there are any.
func PrintBatchSummary(w io.Writer, res sbmigrate.BatchResult, useColors bool) {
	if len(res.Files) > 0 {
		fmt.Fprintln(w, RenderStyle(StyleCyan, "Source files", useColors))
		printSourceTable(w, res.Files)
		fmt.Fprintln(w, "")
	}

	fmt.Fprintln(w, RenderStyle(StyleCyan, "Destination files", useColors))
	printDestinationTable(w, res.Destinations)

	if len(res.MapLocations) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, RenderStyle(StyleCyan, "Map components", useColors))
		printLocationTable(w, res.MapLocations)
	}

	if len(res.Partials) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, RenderStyle(StyleCyan, "Template partials", useColors))
		printPartialTable(w, res.Partials)
	}

	printFileWarnings(w, res.Files, useColors)
}

// PrintLocations renders detected map components on their own, for
// detection runs that stop short of a full migration.
func PrintLocations(w io.Writer, locations []sbmigrate.MapComponentLocation, useColors bool) {
	fmt.Fprintln(w, RenderStyle(StyleCyan, "Map components", useColors))
	if len(locations) == 0 {
		fmt.Fprintln(w, "(none detected)")
		return
	}
	printLocationTable(w, locations)
}

func printSourceTable(w io.Writer, files []sbmigrate.TransformationResult) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Source", "Excluded", "Unrecognized", "Passes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, f := range files {
		table.Append([]string{
			f.SourcePath,
			fmt.Sprintf("%d", f.ExcludedRuleCount),
			fmt.Sprintf("%d", len(f.UnrecognizedMixins)),
			fmt.Sprintf("%d", f.Passes),
		})
	}
	table.Render()
	fmt.Fprint(w, buf.String())
}

func printDestinationTable(w io.Writer, dests []sbmigrate.DestinationFile) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Sources", "Size", "Syntax"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})

	for _, d := range dests {
		syntax := "ok"
		if !d.SyntaxValid {
			syntax = "INVALID"
		}
		table.Append([]string{
			d.Path,
			fmt.Sprintf("%d", len(d.Sources)),
			fmt.Sprintf("%d B", len(d.Content)),
			syntax,
		})
	}
	table.Render()
	fmt.Fprint(w, buf.String())
}

func printLocationTable(w io.Writer, locations []sbmigrate.MapComponentLocation) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Kind", "Stylesheet", "Partial", "Inherited"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, loc := range locations {
		scss := loc.SCSSPath
		if scss == "" {
			scss = "(unresolved)"
		}
		inherited := ""
		if loc.Inherited {
			inherited = "yes"
		}
		table.Append([]string{loc.Kind.String(), scss, loc.TemplatePartial, inherited})
	}
	table.Render()
	fmt.Fprint(w, buf.String())
}

func printPartialTable(w io.Writer, partials []sbmigrate.PartialCopyResult) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Partial", "Decision", "Source"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, p := range partials {
		table.Append([]string{p.Partial, p.Status.String(), p.SourcePath})
	}
	table.Render()
	fmt.Fprint(w, buf.String())
}

func printFileWarnings(w io.Writer, files []sbmigrate.TransformationResult, useColors bool) {
	total := 0
	for _, f := range files {
		total += len(f.Warnings)
	}
	if total == 0 {
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, RenderStyle(StyleYellow, "Warnings", useColors))
	for _, f := range files {
		for _, warning := range f.Warnings {
			fmt.Fprintf(w, "* %s: %s\n", f.SourcePath, warning)
		}
	}
}
