package sbmigrate

import (
	"os"
	"path/filepath"
)

// Theme locates the pieces of a dealer WordPress theme checkout.
type Theme struct {
	// Root is the dealer theme directory: css/style.scss plus page
	// files under css/, functions.php at top level, partials/ for
	// template fragments.
	Root string

	// SharedRoot is the parent platform theme the dealer theme
	// inherits templates and partials from. Empty for standalone
	// themes.
	SharedRoot string

	// OEM selects brand-specific detection overrides ("toyota",
	// "honda", ...). Empty uses the generic tables.
	OEM string
}

func (t Theme) StyleDir() string       { return filepath.Join(t.Root, "css") }
func (t Theme) MainStylesheet() string { return filepath.Join(t.Root, "css", "style.scss") }
func (t Theme) FunctionsFile() string  { return filepath.Join(t.Root, "functions.php") }
func (t Theme) PartialsDir() string    { return filepath.Join(t.Root, "partials") }

func (t Theme) SharedStyleDir() string {
	if t.SharedRoot == "" {
		return ""
	}
	return filepath.Join(t.SharedRoot, "css")
}

// Site Builder destination stylesheets.
func (t Theme) InsideStylesheet() string { return filepath.Join(t.Root, "css", "sb-inside.scss") }
func (t Theme) HomeStylesheet() string   { return filepath.Join(t.Root, "css", "sb-home.scss") }

func (t Theme) DestinationFiles() []string {
	return []string{t.InsideStylesheet(), t.HomeStylesheet()}
}

// AssetBase is the public URL prefix the theme's uploaded assets
// resolve under.
func (t Theme) AssetBase() string {
	return "/wp-content/themes/" + filepath.Base(filepath.Clean(t.Root))
}

// SourceMapping pairs a legacy stylesheet with the Site Builder files
// its content lands in.
type SourceMapping struct {
	Source       string
	Destinations []string
}

// SourceMappings lists the legacy stylesheets to convert. Order
// matters: destination files are assembled in this order, so the
// global style.scss content precedes the page-specific content.
// Sources missing on disk are skipped.
func (t Theme) SourceMappings() []SourceMapping {
	all := []SourceMapping{
		{
			Source:       filepath.Join(t.Root, "css", "style.scss"),
			Destinations: []string{t.InsideStylesheet(), t.HomeStylesheet()},
		},
		{
			Source:       filepath.Join(t.Root, "css", "home.scss"),
			Destinations: []string{t.HomeStylesheet()},
		},
		{
			Source:       filepath.Join(t.Root, "css", "inside.scss"),
			Destinations: []string{t.InsideStylesheet()},
		},
	}

	mappings := make([]SourceMapping, 0, len(all))
	for _, m := range all {
		if fileExists(m.Source) {
			mappings = append(mappings, m)
		}
	}
	return mappings
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
