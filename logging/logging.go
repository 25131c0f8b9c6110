// Package logging configures the process logger: a filterable, leveled
// slog.Logger with optional ANSI styling.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

type Config struct {
	Filter Filter
	// Color enables ANSI styling.
	Color bool
	// Source annotates records with file and line.
	Source bool
}

// New creates a logger writing human-readable lines to w. It does not
// install it, see Install.
func New(w io.Writer, c Config) *slog.Logger {
	inner := tint.NewHandler(w, &tint.Options{
		AddSource:  c.Source,
		Level:      c.Filter.MinLevel(),
		NoColor:    !c.Color,
		TimeFormat: time.RFC3339,
	})
	return slog.New(newFilterHandler(c.Filter, inner))
}
