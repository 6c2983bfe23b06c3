// Package sbmigrate converts legacy dealer-theme SCSS into Site Builder
// page stylesheets and relocates map components along the way.
//
// sbmigrate reads a dealer WordPress theme checkout, strips style rules
// that collide with Site Builder's own chrome (header, footer,
// navigation), expands the legacy mixin library into plain CSS, and
// writes the surviving content into the page-scoped sb-inside.scss and
// sb-home.scss files. Map components referenced only through shortcodes
// or template partials are discovered and their SCSS is carried into
// both page files.
//
// # Migration
//
// Convert a theme in one call:
//
//	theme := sbmigrate.Theme{
//		Root:       "themes/smithtown-toyota",
//		SharedRoot: "themes/dealer-base",
//		OEM:        "toyota",
//	}
//	result := sbmigrate.Migrate(ctx, theme, sbmigrate.Options{Workers: 4})
//
// # Auditing
//
// Audit already-migrated output for leaked chrome selectors:
//
//	violations, stats, err := sbmigrate.AuditFiles(
//		[]string{"themes/*/css/sb-*.scss"},
//		sbmigrate.DefaultDetectionConfig(),
//		logger,
//	)
//
// # CLI Tool
//
// sbmigrate also provides a CLI tool. Install with:
//
//	go install github.com/dealercraft/sbmigrate/cmd/sbmigrate@latest
//
// See cmd/sbmigrate for CLI documentation.
package sbmigrate

// Public API entry points:
// - Migrate(ctx, theme, opts) BatchResult
// - AuditFiles(patterns, cfg, log) ([]Violation, ScanStats, error)
// - (*Processor).ProcessFile(ctx, fc) TransformationResult
// - (*MixinTransformer).Transform(content) TransformOutcome
// - (*Detector).DetectMapComponents(theme) ([]MapComponentLocation, error)
