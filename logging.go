package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// parseLevel maps a config level name to a zerolog level, defaulting to info.
func parseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// newLogger writes console-formatted events to out.
func newLogger(level string, out io.Writer) zerolog.Logger {
	w := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}
