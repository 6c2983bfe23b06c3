package main

import (
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the console logger backing library progress output.
// Quiet discards everything; verbose lowers the threshold to debug so
// per-file pipeline steps become visible.
func newLogger(verbose, quiet, colors bool) *zap.Logger {
	if quiet {
		return zap.NewNop()
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.TimeKey = zapcore.OmitKey
	if colors {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

// resolveColors honors the --color flag and otherwise defers to the
// color package's own terminal detection.
func resolveColors() bool {
	if getBoolWithFallback("color", "color", false) {
		color.NoColor = false
	}
	return !color.NoColor
}
