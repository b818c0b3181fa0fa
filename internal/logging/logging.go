// Package logging configures the process-wide zerolog logger: console output
// always, plus a size-rotated file when a path is configured.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
	With().Timestamp().Logger()

// Setup initializes the root logger. filePath may be empty for console-only
// logging. Unknown levels fall back to info.
func Setup(level, filePath string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	if filePath != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	root = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// L returns the root logger.
func L() zerolog.Logger {
	return root
}

// Component returns a logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return root.With().Str("component", name).Logger()
}
