// Package logging builds the zerolog loggers used across plantcare.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/plant-care/internal/model"
)

const consoleTimeFormat = "15:04:05"

func init() {
	zerolog.ErrorFieldName = "err"
}

// Mode selects where log lines go.
type Mode int

const (
	// ModeFile writes JSON lines to the log file only. Used while the TUI
	// owns the terminal.
	ModeFile Mode = iota
	// ModeConsole writes human readable lines to stderr and JSON lines to
	// the log file when one can be opened.
	ModeConsole
)

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// FilePath resolves the log file location from cfg.
func FilePath(cfg model.LogConfig) string {
	if cfg.File != "" {
		return cfg.File
	}
	return filepath.Join(model.ConfigDir(), "plantcare.log")
}

// New returns a logger configured from cfg. The returned closer releases
// the log file and is never nil.
func New(cfg model.LogConfig, mode Mode) (zerolog.Logger, io.Closer, error) {
	var writers []io.Writer
	closer := io.Closer(nopCloser{})

	path := FilePath(cfg)
	f, err := openFile(path)
	if err != nil {
		if mode == ModeFile {
			return zerolog.Nop(), closer, err
		}
	} else {
		writers = append(writers, f)
		closer = f
	}

	if mode == ModeConsole {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Logger()
	return logger, closer, nil
}

// NewWriter returns a JSON logger writing to w. Useful in tests.
func NewWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
