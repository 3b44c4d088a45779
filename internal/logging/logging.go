// Package logging builds the process logger. Every record goes to the main
// handler and, when a Sink is supplied, is also rendered as one text line and
// handed to the sink, which is how a supervising launcher mirrors the log.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"attachbridge/internal/config"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOriginal  = "original"
	KeyUnique    = "unique"
	KeyStatus    = "status"
	KeySuccess   = "success"
	KeyMessage   = "message"
	KeyError     = "error"
	KeyAddr      = "addr"
	KeyPlatform  = "platform"
	KeyRequestID = "request_id"
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyLatency   = "latency_ms"
)

// Status values for the per-request attach line.
const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// Sink receives each log record as a single line without the trailing newline.
// It must be safe for concurrent use.
type Sink func(line string)

// New returns a logger writing to w in the configured format, fanned out to
// sink when it is non-nil.
func New(cfg config.LogConfig, w io.Writer, sink Sink) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var main slog.Handler
	if cfg.Format == "json" {
		main = slog.NewJSONHandler(w, opts)
	} else {
		main = slog.NewTextHandler(w, opts)
	}
	if sink == nil {
		return slog.New(main)
	}
	return slog.New(fanout{main, slog.NewTextHandler(sinkWriter(sink), opts)})
}

// ParseLevel maps debug/info/warn/error to a slog.Level; anything else is info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Status returns a slog attribute for the attach status.
func Status(success bool) slog.Attr {
	if success {
		return slog.String(KeyStatus, StatusSuccess)
	}
	return slog.String(KeyStatus, StatusFailed)
}

// Addr returns a slog attribute for a listen address.
func Addr(addr string) slog.Attr {
	return slog.String(KeyAddr, addr)
}

type sinkWriter Sink

func (s sinkWriter) Write(p []byte) (int, error) {
	s(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// fanout passes each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
