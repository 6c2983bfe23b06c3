package sbmigrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options configure a migration batch.
type Options struct {
	// Workers bounds how many source files are processed in parallel.
	// Zero or negative uses a small default.
	Workers int

	// Write persists destination files and partial copies to disk.
	// Unset, the batch runs fully in memory and callers read the
	// results from BatchResult.
	Write bool

	// DryRun forces an in-memory run even when Write is set.
	DryRun bool

	// CopyInherited copies shared-source partials into the theme
	// instead of leaving them to inheritance.
	CopyInherited bool

	// Detection overrides the default detection tables. OEM overrides
	// from the theme are applied on top.
	Detection *DetectionConfig

	// Validator overrides the default sass round-trip validator.
	Validator *SyntaxValidator

	// Resolver handles partials that cannot be located automatically.
	Resolver PartialResolver

	Log *zap.Logger
}

const defaultWorkers = 4

// mapComponentsSource names the synthetic source that carries the
// relocated map SCSS in results.
const mapComponentsSource = "map-components"

// DestinationFile is one assembled Site Builder stylesheet.
type DestinationFile struct {
	Path    string
	Content string

	// Sources lists the files whose transformed content was merged,
	// in assembly order.
	Sources []string

	SyntaxValid bool
	SyntaxError string
}

// BatchResult reports a whole-theme migration.
type BatchResult struct {
	Theme        Theme
	Files        []TransformationResult
	Destinations []DestinationFile
	MapLocations []MapComponentLocation
	Partials     []PartialCopyResult

	// Err aggregates everything that went wrong. Per-file failures
	// are also recorded on the individual results; the batch never
	// aborts on them.
	Err error
}

// HasInvalidOutput reports whether any destination file failed the
// syntax gate.
func (r BatchResult) HasInvalidOutput() bool {
	for _, d := range r.Destinations {
		if !d.SyntaxValid {
			return true
		}
	}
	return false
}

// Migrate converts a theme's legacy stylesheets into the Site Builder
// page files. It detects map components, copies template partials the
// theme is missing, transforms each source stylesheet, merges the
// results per destination and validates the assembled output.
func Migrate(ctx context.Context, theme Theme, opts Options) BatchResult {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("migrate")

	res := BatchResult{Theme: theme}

	cfg := DefaultDetectionConfig()
	if opts.Detection != nil {
		cfg = *opts.Detection
	}
	oem := OEMFor(theme.OEM)
	cfg = cfg.ApplyOEM(oem)
	log.Info("starting migration",
		zap.String("theme", theme.Root),
		zap.String("oem", oem.Name()))

	write := opts.Write && !opts.DryRun

	detector := NewDetector(cfg, log)
	detector.Resolver = opts.Resolver
	detector.CopyInherited = opts.CopyInherited
	detector.DryRun = !write

	locations, err := detector.DetectMapComponents(theme)
	if err != nil {
		res.Err = err
		return res
	}
	res.MapLocations = locations

	for _, loc := range locations {
		if loc.Kind != ImplicitShortcodeDerived || loc.TemplatePartial == "" {
			continue
		}
		copyRes := detector.CopyPartialToTheme(theme, loc.TemplatePartial)
		res.Partials = append(res.Partials, copyRes)
		res.Err = multierr.Append(res.Err, copyRes.Err)
	}

	processor := NewProcessor(cfg, ProcessorOptions{
		AssetBase: theme.AssetBase(),
		Validator: opts.Validator,
	}, log)

	// Explicit imports stay with the inlining pass; strip their
	// statements from every transformed source.
	var dropRefs []string
	for _, loc := range locations {
		if loc.Kind == ExplicitImport {
			dropRefs = append(dropRefs, loc.ImportRef)
		}
	}

	mappings := theme.SourceMappings()
	res.Files = processMappings(ctx, processor, mappings, dropRefs, opts.Workers)

	if mapResult, ok := processMapComponents(ctx, processor, theme, locations, log); ok {
		res.Files = append(res.Files, mapResult)
	}

	for _, fr := range res.Files {
		res.Err = multierr.Append(res.Err, fr.Err)
	}

	res.Destinations = assembleDestinations(ctx, theme, res.Files, processor.Validator())

	if write {
		res.Err = multierr.Append(res.Err, writeDestinations(res.Destinations, log))
	}
	return res
}

// processMappings runs the per-file pipeline over a bounded worker
// pool. Results keep mapping order, so destination assembly sees the
// global stylesheet before the page-specific ones.
func processMappings(ctx context.Context, p *Processor, mappings []SourceMapping, dropRefs []string, workers int) []TransformationResult {
	if len(mappings) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(mappings) {
		workers = len(mappings)
	}

	jobs := make(chan int)
	out := make([]TransformationResult, len(mappings))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out[idx] = processOne(ctx, p, mappings[idx], dropRefs)
			}
		}()
	}

	for idx := range mappings {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return out
}

func processOne(ctx context.Context, p *Processor, m SourceMapping, dropRefs []string) TransformationResult {
	data, err := os.ReadFile(m.Source)
	if err != nil {
		return TransformationResult{
			SourcePath: m.Source,
			Err:        fmt.Errorf("reading %s: %w", m.Source, err),
		}
	}
	return p.ProcessFile(ctx, FileContext{
		SourcePath:   m.Source,
		Content:      string(data),
		Destinations: m.Destinations,
		DropImports:  dropRefs,
	})
}

// processMapComponents reads every implicit map stylesheet, joins
// them and runs the joined content through the pipeline once, bound
// for both destination files.
func processMapComponents(ctx context.Context, p *Processor, theme Theme, locations []MapComponentLocation, log *zap.Logger) (TransformationResult, bool) {
	var (
		parts []string
		errs  error
	)
	for _, loc := range locations {
		if loc.Kind != ImplicitShortcodeDerived || loc.SCSSPath == "" {
			continue
		}
		data, err := os.ReadFile(loc.SCSSPath)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reading %s: %w", loc.SCSSPath, err))
			continue
		}
		parts = append(parts, strings.TrimRight(string(data), "\n"))
	}
	if len(parts) == 0 && errs == nil {
		return TransformationResult{}, false
	}

	log.Info("migrating map component styles", zap.Int("files", len(parts)))
	result := p.ProcessFile(ctx, FileContext{
		SourcePath:   mapComponentsSource,
		Content:      strings.Join(parts, "\n\n"),
		Destinations: theme.DestinationFiles(),
	})
	result.Err = multierr.Append(result.Err, errs)
	return result, true
}

// assembleDestinations merges transformed content per destination
// file. Sources contribute in mapping order; relocated map content
// always lands last, after the page's own styles.
func assembleDestinations(ctx context.Context, theme Theme, files []TransformationResult, validator *SyntaxValidator) []DestinationFile {
	var dests []DestinationFile
	for _, destPath := range theme.DestinationFiles() {
		var (
			parts   []string
			sources []string
		)
		appendOutput := func(f TransformationResult) {
			for _, out := range f.Outputs {
				if out.Path != destPath || out.Content == "" {
					continue
				}
				parts = append(parts, strings.TrimRight(out.Content, "\n"))
				sources = append(sources, f.SourcePath)
			}
		}
		for _, f := range files {
			if f.SourcePath != mapComponentsSource {
				appendOutput(f)
			}
		}
		for _, f := range files {
			if f.SourcePath == mapComponentsSource {
				appendOutput(f)
			}
		}

		content := normalizeWhitespace(strings.Join(parts, "\n\n"))
		valid, verr := validator.Validate(ctx, content)
		dests = append(dests, DestinationFile{
			Path:        destPath,
			Content:     content,
			Sources:     sources,
			SyntaxValid: valid,
			SyntaxError: verr,
		})
	}
	return dests
}

func writeDestinations(dests []DestinationFile, log *zap.Logger) error {
	var errs error
	for _, d := range dests {
		if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("creating %s: %w", filepath.Dir(d.Path), err))
			continue
		}
		if err := os.WriteFile(d.Path, []byte(d.Content), 0o644); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("writing %s: %w", d.Path, err))
			continue
		}
		log.Info("wrote destination",
			zap.String("path", d.Path),
			zap.Int("bytes", len(d.Content)),
			zap.Bool("valid", d.SyntaxValid))
	}
	return errs
}
