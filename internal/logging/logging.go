// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Settings selects level and destination.
type Settings struct {
	Level string
	// File receives logs when set. Otherwise logs go to Fallback.
	File       string
	WithCaller bool
	// Fallback is the destination when File is empty. A nil Fallback
	// discards logs, which is what the full-screen UI needs.
	Fallback io.Writer
}

// Setup installs the global logger and returns a closer for any opened file.
func Setup(s Settings) (io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s.Level)))
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", s.Level)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	switch {
	case s.File != "":
		f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", s.File)
		}
		out, closer = f, f
	case s.Fallback != nil:
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = s.Fallback
		})
	}

	ctx := zerolog.New(out).With().Timestamp()
	if s.WithCaller {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
