package cliconfig

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns a console logger on stderr at the given level. Unknown
// levels fall back to info.
func Logger(level string) zerolog.Logger {
	return NewLogger(os.Stderr, level)
}

// NewLogger is like Logger, but writes to w.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stderr}).
		Level(lvl).With().Timestamp().Logger()
}
