// Package logging configures the zerolog logger shared by the server and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const (
	// AppLogFile receives every event at or above the configured level.
	AppLogFile = "focusapi.log"
	// ErrorLogFile receives error and fatal events only.
	ErrorLogFile = "focusapi_error.log"
)

// Config holds logging configuration.
type Config struct {
	Level  string
	Pretty bool
	// Dir enables file output when non-empty.
	Dir string
	// Stdout overrides the console writer, mainly for tests.
	Stdout io.Writer
}

// Logger bundles the configured logger with the files it owns.
type Logger struct {
	zerolog.Logger
	closers []io.Closer
}

// Close flushes and closes the log files.
func (l *Logger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Setup builds a logger writing JSON to stdout and, when Dir is set, to the
// application and error log files. Unknown levels fall back to info.
func Setup(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = os.Stdout
	if cfg.Stdout != nil {
		console = cfg.Stdout
	}
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{console}
	var closers []io.Closer

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		appFile, err := openAppend(filepath.Join(cfg.Dir, AppLogFile))
		if err != nil {
			return nil, err
		}
		errFile, err := openAppend(filepath.Join(cfg.Dir, ErrorLogFile))
		if err != nil {
			appFile.Close()
			return nil, err
		}
		writers = append(writers, appFile, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: errFile},
			Level:  zerolog.ErrorLevel,
		})
		closers = append(closers, appFile, errFile)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", "focusapi").
		Logger()

	return &Logger{Logger: logger, closers: closers}, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
