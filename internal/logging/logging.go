// Package logging builds the slog loggers shared by the diary packages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Field names used across components.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldID        = "id"
	FieldDate      = "date"
	FieldCount     = "count"
	FieldMode      = "mode"
	FieldStart     = "start"
	FieldEnd       = "end"
	FieldError     = "error"
)

// Component names.
const (
	ComponentStore      = "store"
	ComponentController = "controller"
	ComponentMCP        = "mcp"
	ComponentCLI        = "cli"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds logger configuration.
type Config struct {
	Level  string
	Format string
	// Writer defaults to stderr; stdout carries command output.
	Writer io.Writer
}

// New creates a logger from cfg.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(handler), nil
}

// ParseLevel maps a level name to slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// Component returns l tagged with the component name.
// A nil l yields a discard logger.
func Component(l *slog.Logger, name string) *slog.Logger {
	return OrDiscard(l).With(FieldComponent, name)
}

// OrDiscard returns l, or a logger that drops everything when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
