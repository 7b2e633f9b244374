// Package log provides the structured logging (slog) handler used by
// engine instances. Records are rendered to a single line per event so
// embedders can point the sink anywhere an io.Writer goes.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Handler implements slog.Handler, writing one formatted line per record.
type Handler struct {
	opts  handlerConfig
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
	group string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	w         io.Writer
	level     slog.Level
	addSource bool
	engineID  uint64
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		w:     os.Stderr,
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) { c.level = level }
}

// WithSource enables reporting of the record's source location.
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) { c.addSource = enabled }
}

// WithWriter sets the log sink. Defaults to stderr.
func WithWriter(w io.Writer) HandlerOption {
	return func(c *handlerConfig) { c.w = w }
}

// WithEngineID stamps every record with the owning engine's number.
func WithEngineID(id uint64) HandlerOption {
	return func(c *handlerConfig) { c.engineID = id }
}

// NewHandler creates a Handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{opts: cfg, w: cfg.w, mu: &sync.Mutex{}}
}

// New creates a slog.Logger backed by a Handler with the given options.
func New(opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(opts...))
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle renders the record to one line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	if h.opts.engineID != 0 {
		fmt.Fprintf(&b, " engine=%d", h.opts.engineID)
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key + "=" + formatValue(a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(h.formatAttr(a))
		return true
	})

	if h.opts.addSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		fmt.Fprintf(&b, " source=%s:%d", f.File, f.Line)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a handler that includes the given attributes on every
// record. Keys are qualified with the group open at attachment time.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

// WithGroup returns a handler that qualifies attribute keys with the
// group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	nh := *h
	if nh.group != "" {
		nh.group += "." + name
	} else {
		nh.group = name
	}
	return &nh
}

func (h *Handler) formatAttr(a slog.Attr) string {
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	return key + "=" + formatValue(a.Value)
}
