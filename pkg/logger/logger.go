package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger: JSON lines on stdout, or console output
// when pretty is set. Every line carries the service name and caller.
func New(service, level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return base(w, service, level).Caller().Logger()
}

// NewWithWriter is New without caller info, writing to w. Used by tests.
func NewWithWriter(service, level string, w io.Writer) zerolog.Logger {
	return base(w, service, level).Logger()
}

// Component derives a child logger for one pipeline stage (ingestor, router, retry).
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func base(w io.Writer, service, level string) zerolog.Context {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", service)
}

// parseLevel accepts zerolog level names plus "warning"; anything unknown,
// including the disabled levels, falls back to info.
func parseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}
