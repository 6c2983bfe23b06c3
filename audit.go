package sbmigrate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
)

// ScanStats tracks file scanning statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files actually scanned (after filtering)
	FilesSkipped    int // Files skipped due to filtering
}

var (
	// gitignore caching
	gitIgnoreCache *ignore.GitIgnore
	gitIgnoreOnce  sync.Once
)

// isGeneratedStylesheet checks for build artifacts that should never
// be audited: minified bundles and source maps.
func isGeneratedStylesheet(path string) bool {
	return strings.HasSuffix(path, ".min.css") ||
		strings.HasSuffix(path, ".min.scss") ||
		strings.HasSuffix(path, ".css.map")
}

// loadGitIgnore loads the .gitignore file once (thread-safe)
// Gracefully degrades if .gitignore doesn't exist
func loadGitIgnore() *ignore.GitIgnore {
	gitIgnoreOnce.Do(func() {
		gi, err := ignore.CompileIgnoreFile(".gitignore")
		if err != nil {
			gitIgnoreCache = nil
			return
		}
		gitIgnoreCache = gi
	})
	return gitIgnoreCache
}

// shouldSkipFile determines if a file should be excluded from the
// audit.
//
// Two-layer filtering:
// 1. Pattern check (fast): skip minified/source-map artifacts
// 2. Gitignore check: skip gitignored files (only for relative paths)
func shouldSkipFile(path string) bool {
	if isGeneratedStylesheet(path) {
		return true
	}

	// Only apply gitignore to relative paths (paths within the
	// project); absolute paths like /tmp/... are not the project's.
	if !filepath.IsAbs(path) {
		gi := loadGitIgnore()
		if gi != nil && gi.MatchesPath(path) {
			return true
		}
	}

	return false
}

// AuditFiles scans stylesheets matching the given glob patterns for
// selectors the migration would drop: header, footer and nav rules.
// The audit is read-only; it reports what a later Migrate call will
// exclude so theme authors can move shared styles out of chrome
// blocks first.
func AuditFiles(patterns []string, cfg DetectionConfig, log *zap.Logger) ([]Violation, ScanStats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("audit")

	files, stats, err := expandGlobPatternsWithStats(patterns)
	if err != nil {
		return nil, stats, err
	}

	classifier := NewClassifier(cfg, log)

	var all []Violation
	for _, file := range files {
		violations, err := auditFile(file, classifier)
		if err != nil {
			log.Warn("skipping unreadable file",
				zap.String("path", file),
				zap.Error(err))
			continue
		}
		all = append(all, violations...)
	}

	log.Info("audit finished",
		zap.Int("files", stats.FilesScanned),
		zap.Int("violations", len(all)))
	return all, stats, nil
}

// expandGlobPatternsWithStats expands globs and tracks statistics
func expandGlobPatternsWithStats(patterns []string) ([]string, ScanStats, error) {
	var allFiles []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, stats, err
		}

		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				info, err := os.Stat(match)
				if err == nil && !info.IsDir() {
					stats.FilesDiscovered++

					if shouldSkipFile(match) {
						stats.FilesSkipped++
					} else {
						allFiles = append(allFiles, match)
						stats.FilesScanned++
					}
				}
			}
		}
	}

	return allFiles, stats, nil
}

// auditFile scans one stylesheet line by line. Selectors may span
// lines before their opening brace, so lines accumulate in a pending
// buffer until a brace or a terminator shows up.
func auditFile(path string, classifier *Classifier) ([]Violation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		violations     []Violation
		pending        strings.Builder
		pendingLine    int
		inBlockComment bool
	)

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if inBlockComment {
			end := strings.Index(trimmed, "*/")
			if end == -1 {
				continue
			}
			inBlockComment = false
			trimmed = strings.TrimSpace(trimmed[end+2:])
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			if !strings.Contains(trimmed, "*/") {
				inBlockComment = true
			}
			continue
		}
		if strings.HasPrefix(trimmed, "@") {
			// At-rule headers (@media, @import, ...) are never chrome
			// selectors; their nested rules get their own lines.
			pending.Reset()
			continue
		}

		braceIdx := strings.IndexByte(trimmed, '{')
		if braceIdx == -1 {
			if strings.ContainsAny(trimmed, ";}") {
				// Declaration or block close, not selector text.
				pending.Reset()
				continue
			}
			if pending.Len() == 0 {
				pendingLine = lineNum
			}
			pending.WriteString(trimmed)
			pending.WriteByte(' ')
			continue
		}

		selector := strings.TrimSpace(pending.String() + trimmed[:braceIdx])
		startLine := lineNum
		if pending.Len() > 0 {
			startLine = pendingLine
		}
		pending.Reset()
		if selector == "" {
			continue
		}

		if v, ok := violationFor(path, line, selector, startLine, lineNum, classifier); ok {
			violations = append(violations, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return violations, nil
}

func violationFor(path, line, selector string, startLine, endLine int, classifier *Classifier) (Violation, bool) {
	cat, match, ok := classifier.MatchExclusion(selector)
	if !ok {
		return Violation{}, false
	}

	v := Violation{
		FromCheck:   CheckChromeExclusion,
		Text:        fmt.Sprintf("%s selector %q will be dropped by migration", cat, selector),
		Severity:    SeverityWarning,
		SourceLines: []string{strings.TrimRight(line, " \t")},
		Pos: ViolationPos{
			Filename: path,
			Line:     startLine,
			Column:   matchColumn(line, match),
		},
		Category: cat,
		Selector: selector,
	}
	if endLine > startLine {
		v.LineRange = &LineRange{From: startLine, To: endLine}
	}
	return v, true
}

// matchColumn locates the matched fragment within the line for a
// 1-based column. Multi-line selectors may carry the fragment on an
// earlier line; column 1 is the fallback.
func matchColumn(line, match string) int {
	if match != "" {
		if idx := strings.Index(line, match); idx != -1 {
			return idx + 1
		}
	}
	return 1
}

// GetRelativePath returns a relative path from the current working directory
func GetRelativePath(absPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}

	return rel
}
