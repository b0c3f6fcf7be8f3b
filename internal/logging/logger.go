// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog and zerolog.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "vault converted", "vault", name, "entries", n)
type Logger interface {
	// Debug logs diagnostic detail, off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// Output formats accepted by New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

var ErrUnknownFormat = errors.New("unknown log format")

// New builds a Logger writing to w. Text and JSON go through slog, console
// output through zerolog's ConsoleWriter.
func New(level, format string, w io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		l, err := newSlog(level, strings.EqualFold(format, FormatJSON), w)
		if err != nil {
			return nil, err
		}
		return l, nil

	case FormatConsole:
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
			Level(lvl).With().Timestamp().Logger()
		return NewZerologLogger(zl), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Redacted replaces the value of any attribute whose key names a secret.
const Redacted = "[REDACTED]"

var secretKeys = map[string]struct{}{
	"password":   {},
	"passphrase": {},
	"secret":     {},
	"totp":       {},
}

// redact returns args with secret values replaced. args is left untouched.
func redact(args []any) []any {
	var out []any
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			if isSecret(a.Key) {
				out = ensureCopy(out, args)
				out[i] = slog.String(a.Key, Redacted)
			}
		case string:
			if i+1 < len(args) && isSecret(a) {
				out = ensureCopy(out, args)
				out[i+1] = Redacted
			}
			i++
		}
	}
	if out == nil {
		return args
	}
	return out
}

func isSecret(key string) bool {
	_, ok := secretKeys[strings.ToLower(key)]
	return ok
}

func ensureCopy(out, args []any) []any {
	if out != nil {
		return out
	}
	return append([]any(nil), args...)
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
