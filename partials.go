package sbmigrate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// PartialStatus is the outcome of a partial-file copy decision.
type PartialStatus int

const (
	// PartialAlreadyExists: the destination theme already carries the
	// partial, nothing to do.
	PartialAlreadyExists PartialStatus = iota

	// PartialSkippedInheritance: the partial exists in the shared
	// source and the destination inherits it through the template
	// system instead of forking a copy.
	PartialSkippedInheritance

	// PartialCopied: the partial was copied into the destination
	// theme.
	PartialCopied

	// PartialSkippedMissing: the partial exists nowhere we know to
	// look and no resolver was available.
	PartialSkippedMissing

	// PartialResolvedManual: a resolver hook supplied the source.
	PartialResolvedManual
)

func (s PartialStatus) String() string {
	switch s {
	case PartialAlreadyExists:
		return "already-exists"
	case PartialSkippedInheritance:
		return "skipped-inheritance"
	case PartialCopied:
		return "copied"
	case PartialSkippedMissing:
		return "skipped-missing"
	case PartialResolvedManual:
		return "resolved-manual"
	}
	return fmt.Sprintf("PartialStatus(%d)", int(s))
}

// PartialResolver is consulted when a partial cannot be located
// automatically. It returns the source file to copy from, or false to
// leave the partial unresolved. The CLI wires an interactive prompt
// here; batch runs leave it nil.
type PartialResolver func(theme Theme, partial string, candidates []string) (string, bool)

// PartialCopyResult reports one copy decision.
type PartialCopyResult struct {
	// Partial is the theme-relative path that was requested, e.g.
	// "partials/map-footer.php".
	Partial string

	Status PartialStatus

	// SourcePath is the file the decision resolved to, when any.
	SourcePath string

	// DestPath is where the partial lives (or would live) in the
	// destination theme.
	DestPath string

	// Candidates lists every fuzzy match considered when the exact
	// path was missing. More than one entry means the choice was
	// ambiguous.
	Candidates []string

	Err error
}

// CopyPartialToTheme decides whether a template partial needs to be
// copied into the dealer theme and performs the copy when it does.
//
// The decision order: a partial already in the destination wins; one
// found in the shared source (exactly or by fuzzy stem match) is left
// to inheritance unless CopyInherited is set; one found nowhere goes
// to the Resolver hook, or is reported missing.
func (d *Detector) CopyPartialToTheme(theme Theme, partial string) PartialCopyResult {
	res := PartialCopyResult{
		Partial:  partial,
		DestPath: filepath.Join(theme.Root, partial),
	}

	if fileExists(res.DestPath) {
		res.Status = PartialAlreadyExists
		return res
	}

	source, candidates := d.findShared(theme, partial)
	res.Candidates = candidates
	if source != "" {
		res.SourcePath = source
		if !d.CopyInherited {
			res.Status = PartialSkippedInheritance
			return res
		}
		res.Status = PartialCopied
		res.Err = d.copyFile(source, res.DestPath)
		return res
	}

	if d.Resolver != nil {
		if manual, ok := d.Resolver(theme, partial, candidates); ok {
			res.Status = PartialResolvedManual
			res.SourcePath = manual
			res.Err = d.copyFile(manual, res.DestPath)
			return res
		}
	}

	res.Status = PartialSkippedMissing
	d.log.Warn("partial not found",
		zap.String("partial", partial),
		zap.String("theme", theme.Root))
	return res
}

// findShared locates a partial in the shared source, exact path
// first, then a fuzzy stem glob in the same directory. With several
// fuzzy candidates the one whose stem equals the search stem wins,
// else the first is taken and the ambiguity is logged.
func (d *Detector) findShared(theme Theme, partial string) (string, []string) {
	if theme.SharedRoot == "" {
		return "", nil
	}

	exact := filepath.Join(theme.SharedRoot, partial)
	if fileExists(exact) {
		return exact, nil
	}

	dir := filepath.Dir(exact)
	stem := strings.TrimSuffix(filepath.Base(partial), ".php")
	pattern := filepath.Join(dir, "*"+stem+"*.php")
	candidates, err := doublestar.FilepathGlob(pattern)
	if err != nil || len(candidates) == 0 {
		return "", nil
	}
	sort.Strings(candidates)

	if len(candidates) == 1 {
		return candidates[0], candidates
	}
	for _, c := range candidates {
		if strings.TrimSuffix(filepath.Base(c), ".php") == stem {
			return c, candidates
		}
	}
	d.log.Warn("ambiguous partial match, taking first",
		zap.String("partial", partial),
		zap.Strings("candidates", candidates))
	return candidates[0], candidates
}

func (d *Detector) copyFile(src, dest string) error {
	if d.DryRun {
		d.log.Info("dry run: would copy partial",
			zap.String("from", src),
			zap.String("to", dest))
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	d.log.Info("copied partial",
		zap.String("from", src),
		zap.String("to", dest))
	return nil
}
