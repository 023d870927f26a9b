// Package logutils builds the process-wide zerolog logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Options selects where and what the logger writes.
type Options struct {
	Level string // zerolog level name
	File  string // JSON lines are appended here; stderr when empty
	Hooks []zerolog.Hook
}

// New builds a logger from opts. The returned func closes the log file.
//
// Without a file, events go to stderr: human-readable when stderr is a
// terminal, JSON otherwise. Stdout is never used so logs cannot mix with
// rendered output.
func New(opts Options) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("log level: %w", err)
	}

	out, closer, err := open(opts.File)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	for _, h := range opts.Hooks {
		l = l.Hook(h)
	}
	return l, closer, nil
}

func open(file string) (io.Writer, func(), error) {
	if file == "" {
		if term.IsTerminal(int(os.Stderr.Fd())) {
			return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, func() {}, nil
		}
		return os.Stderr, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
