// Package logging builds the process logger from config.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options mirrors the log section of the daemon config.
type Options struct {
	Level  string
	Format string // "console" or "json"
	File   string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to stderr, or to a rotating file when
// opts.File is set. The closer releases the file. The level is applied
// globally so ApplyLevel can move it in either direction later.
func New(opts Options, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var (
		out    io.Writer = stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out, closer = lj, lj
	}

	switch strings.ToLower(opts.Format) {
	case "", "console":
		if opts.File == "" {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}
	case "json":
	default:
		_ = closer.Close()
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("unknown log format %q", opts.Format)
	}

	zerolog.SetGlobalLevel(lvl)
	l := zerolog.New(out).With().Timestamp().Logger()
	return l, closer, nil
}

// ParseLevel accepts zerolog level names plus "off". Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return zerolog.InfoLevel, nil
	case "off":
		return zerolog.Disabled, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// ApplyLevel sets the global level, used when config reloads change it.
func ApplyLevel(s string) error {
	lvl, err := ParseLevel(s)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
