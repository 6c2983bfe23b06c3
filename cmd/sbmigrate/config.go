package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dealercraft/sbmigrate"
)

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	// Resolve config file path from flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".sbmigrate.yaml"
	}

	// Load config file and env vars
	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence — only flags that were explicitly set)
	// Merge flags from the specific command and its parent (root) flags
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (SBMIGRATE_* prefix)
	if err := k.Load(env.Provider("SBMIGRATE_", ".", func(s string) string {
		// SBMIGRATE_MIGRATE_WRITE -> migrate.write
		// SBMIGRATE_AUDIT_STRICT -> audit.strict
		// SBMIGRATE_OEM -> oem
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "SBMIGRATE_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// buildTheme constructs the library's Theme struct from koanf state.
func buildTheme() sbmigrate.Theme {
	return sbmigrate.Theme{
		Root:       getStringWithFallback("theme", "theme", "."),
		SharedRoot: getStringWithFallback("shared-root", "shared-root", ""),
		OEM:        getStringWithFallback("oem", "oem", ""),
	}
}

// buildMigrateOptions constructs the library's Options struct from koanf state.
func buildMigrateOptions(log *zap.Logger) sbmigrate.Options {
	return sbmigrate.Options{
		Workers:       getIntWithFallback("workers", "migrate.workers", 0),
		Write:         getBoolWithFallback("write", "migrate.write", false),
		DryRun:        getBoolWithFallback("dry-run", "migrate.dry-run", false),
		CopyInherited: getBoolWithFallback("copy-inherited", "migrate.copy-inherited", false),
		Log:           log,
	}
}

// auditPatterns resolves the stylesheet globs to audit: flag key first,
// then config key, then every SCSS file under the theme's style directory.
func auditPatterns(theme sbmigrate.Theme) []string {
	if patterns := k.Strings("patterns"); len(patterns) > 0 {
		return patterns
	}
	if patterns := k.Strings("audit.patterns"); len(patterns) > 0 {
		return patterns
	}
	return []string{filepath.Join(theme.StyleDir(), "**", "*.scss")}
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
