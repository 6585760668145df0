// Package logging builds the zerolog logger shared by the CLI, the shells,
// and the contact store.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/smileynet/contactbook/internal/config"
)

// New returns a logger writing to w at the named level. format is "json" for
// one object per line, anything else for zerolog's console writer.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: %w", err)
		}
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w), TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Open builds a logger from cfg. When cfg.File is set the log is appended to
// that file; otherwise it goes to fallback. A nil fallback discards output.
// The returned close func must be called once the logger is no longer used.
func Open(cfg config.Log, fallback io.Writer) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	if cfg.File == "" {
		if fallback == nil {
			fallback = io.Discard
		}
		l, err := New(fallback, cfg.Level, cfg.Format)
		return l, noop, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("logging: creating directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("logging: opening %s: %w", cfg.File, err)
	}

	l, err := New(f, cfg.Level, cfg.Format)
	if err != nil {
		_ = f.Close()
		return zerolog.Nop(), noop, err
	}
	return l, f.Close, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
