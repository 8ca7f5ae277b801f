// Package logger builds the slog.Logger used by yvctl: a tinted console
// handler plus an optional rotating JSON file, with app keys masked.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options defines parameters for logger creation.
type Options struct {
	Env       string
	Level     string // console level, default info
	FileLevel string // file level, default debug
	File      string
	App       string
	// Console receives human-readable output. Defaults to os.Stderr so
	// command output on stdout stays machine-readable.
	Console io.Writer
	// Secrets are literal values masked wherever they appear in a string
	// attribute, e.g. the app key inside a logged URL.
	Secrets []string
}

// SensitiveKeys are attribute keys whose values are never logged.
var SensitiveKeys = []string{"app_key", "x-yvp-app-key", "token", "api_key", "authorization"}

const redacted = "[REDACTED]"

var closers sync.Map

// New creates a configured slog.Logger.
func New(o Options) *slog.Logger {
	console := o.Console
	if console == nil {
		console = os.Stderr
	}

	timeFormat := time.RFC3339
	if o.Env == "dev" {
		timeFormat = time.Kitchen
	}
	handlers := []slog.Handler{
		NewRedactingHandler(tint.NewHandler(console, &tint.Options{
			Level:      ParseLevel(o.Level, slog.LevelInfo),
			TimeFormat: timeFormat,
			NoColor:    !isTerminal(console),
		}), SensitiveKeys, o.Secrets...),
	}

	var closer func() error
	if o.File != "" {
		w := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		closer = w.Close
		fh := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(o.FileLevel, slog.LevelDebug)})
		handlers = append(handlers, NewRedactingHandler(fh, SensitiveKeys, o.Secrets...))
	}

	h := handlers[0]
	if len(handlers) > 1 {
		h = NewMultiHandler(handlers...)
	}
	l := slog.New(h).With(slog.String("app", o.App), slog.String("env", o.Env))
	if closer != nil {
		closers.Store(l, closer)
	}
	return l
}

// Close releases the log file opened by New, if any.
func Close(l *slog.Logger) error {
	if c, ok := closers.LoadAndDelete(l); ok {
		return c.(func() error)()
	}
	return nil
}

// ParseLevel maps debug, info, warn (or warning) and error to slog levels. Anything else
// yields def.
func ParseLevel(s string, def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// RedactingHandler masks sensitive attributes, including inside groups.
type RedactingHandler struct {
	inner   slog.Handler
	keys    map[string]struct{}
	secrets []string
}

// NewRedactingHandler wraps inner. Attributes named by keys are replaced
// whole; occurrences of secrets inside string values are masked.
func NewRedactingHandler(inner slog.Handler, keys []string, secrets ...string) *RedactingHandler {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[strings.ToLower(k)] = struct{}{}
	}
	var s []string
	for _, v := range secrets {
		if v != "" {
			s = append(s, v)
		}
	}
	return &RedactingHandler{inner: inner, keys: m, secrets: s}
}

func (h *RedactingHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.inner.Enabled(ctx, l)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	nr := slog.NewRecord(r.Time, r.Level, h.mask(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(h.sanitize(a))
		return true
	})
	return h.inner.Handle(ctx, nr)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.sanitize(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(clean), keys: h.keys, secrets: h.secrets}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name), keys: h.keys, secrets: h.secrets}
}

func (h *RedactingHandler) sanitize(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		clean := make([]any, len(group))
		for i, ga := range group {
			clean[i] = h.sanitize(ga)
		}
		return slog.Group(a.Key, clean...)
	case slog.KindString:
		return slog.String(a.Key, h.mask(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			if msg := h.mask(err.Error()); msg != err.Error() {
				return slog.String(a.Key, msg)
			}
		}
	}
	return a
}

func (h *RedactingHandler) mask(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}

// MultiHandler fans a record out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a handler that writes to every handler given.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(hh slog.Handler) slog.Handler { return hh.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.each(func(hh slog.Handler) slog.Handler { return hh.WithGroup(name) })
}

func (h *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		out[i] = fn(hh)
	}
	return &MultiHandler{handlers: out}
}
