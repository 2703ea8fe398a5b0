// Package logging builds the zap logger for fitreport from configuration and
// hands out category-named child loggers.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names the subsystem a log line comes from.
type Category string

const (
	CategoryBoot         Category = "boot"         // CLI startup, config loading
	CategoryExtraction   Category = "extraction"   // tiered sample extraction
	CategoryFitness      Category = "fitness"      // Fit REST calls and credentials
	CategoryGeneration   Category = "generation"   // text generation calls
	CategoryArticulation Category = "articulation" // report text recovery
	CategoryReport       Category = "report"       // request orchestration
	CategoryAudit        Category = "audit"        // audit events
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // optional; empty logs to stderr
	Categories map[string]bool // per-category toggles, missing means enabled
}

// Logger is the root logger plus the category toggles.
type Logger struct {
	root       *zap.Logger
	categories map[string]bool
}

// New builds a Logger. verbose forces the debug level.
func New(opts Options, verbose bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	switch strings.ToLower(opts.Format) {
	case "", "json":
		cfg.Encoding = "json"
	case "console", "text":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: json, console)", opts.Format)
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	root, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{root: root, categories: opts.Categories}, nil
}

// Wrap adapts an existing zap logger, for tests and embedding.
func Wrap(root *zap.Logger) *Logger {
	if root == nil {
		root = zap.NewNop()
	}
	return &Logger{root: root}
}

// Root returns the underlying zap logger.
func (l *Logger) Root() *zap.Logger {
	return l.root
}

// IsCategoryEnabled returns whether a category logs at all.
func (l *Logger) IsCategoryEnabled(category Category) bool {
	if l.categories == nil {
		return true
	}
	enabled, ok := l.categories[string(category)]
	return !ok || enabled
}

// For returns the child logger of a category. Disabled categories get a
// no-op logger.
func (l *Logger) For(category Category) *zap.Logger {
	if l == nil || !l.IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	return l.root.Named(string(category))
}

// Sync flushes buffered entries. Sync errors on terminals are ignored.
func (l *Logger) Sync() {
	_ = l.root.Sync()
}
