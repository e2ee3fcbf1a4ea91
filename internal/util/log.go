// Package util holds small process helpers shared by the binaries.
package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger on stdout. Unknown levels fall back to info.
func NewLogger(level string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, level, "json")
}

// NewLoggerTo builds a timestamped logger on w. format "console" renders human-readable lines;
// anything else emits JSON.
func NewLoggerTo(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}
