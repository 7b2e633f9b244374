// Package ren is a host binding for an embedded Ren-style interpreter
// runtime. It wraps runtime-owned value cells in host-side proxies,
// resolves which engine a value belongs to, and bridges the runtime's
// abnormal control flow (raised errors, cancellation, exit directives)
// into ordinary Go error values.
package ren

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/renlang/ren-go/device"
	"github.com/renlang/ren-go/internal/runtime"
	renlog "github.com/renlang/ren-go/log"
)

// Engine is one running interpreter instance. Values created under an
// engine borrow a reference to it; the engine must outlive every value
// whose payload lives in its arena.
//
// The evaluator is single-threaded per engine. The one sanctioned
// cross-thread interaction is RequestCancel.
type Engine struct {
	core *runtime.Core
	dev  *device.StdIO
	log  *slog.Logger
	cfg  Config
	id   uint64
}

var engineSeq atomic.Uint64

// EngineOption configures engine creation.
type EngineOption func(*engineSettings)

type engineSettings struct {
	cfg    Config
	logger *slog.Logger
	dev    *device.StdIO
}

// WithConfig replaces the default engine configuration.
func WithConfig(cfg Config) EngineOption {
	return func(s *engineSettings) { s.cfg = cfg }
}

// WithLogger sets the engine's logger. Defaults to the package log
// handler at the configured level.
func WithLogger(l *slog.Logger) EngineOption {
	return func(s *engineSettings) { s.logger = l }
}

// WithStdIO attaches a standard I/O device shim to the engine.
func WithStdIO(d *device.StdIO) EngineOption {
	return func(s *engineSettings) { s.dev = d }
}

// NewEngine creates and starts an interpreter instance. The configuration
// is validated before any runtime state is allocated.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	s := engineSettings{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&s)
	}
	if err := validateConfig(s.cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		id:   engineSeq.Add(1),
		cfg:  s.cfg,
		core: runtime.NewCore(s.cfg.ArenaCapacity),
		dev:  s.dev,
	}
	if e.dev == nil {
		e.dev = device.NewNull()
	}
	if s.logger != nil {
		e.log = s.logger
	} else {
		e.log = renlog.New(
			renlog.WithLevel(parseLevel(s.cfg.LogLevel)),
			renlog.WithEngineID(e.id),
		)
	}
	e.log.Debug("engine started", "arena_capacity", s.cfg.ArenaCapacity)
	return e, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ID returns the process-unique engine number.
func (e *Engine) ID() uint64 { return e.id }

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.log }

// Device returns the engine's standard I/O device shim.
func (e *Engine) Device() *device.StdIO { return e.dev }

// Alive reports whether the engine has not been shut down.
func (e *Engine) Alive() bool { return e.core.Alive() }

// Close shuts the engine down. All outstanding values backed by this
// engine become invalid; operating on them afterward is a precondition
// violation, detected where feasible with a panic rather than silent
// corruption. If this engine is the registered default it is unregistered.
func (e *Engine) Close() error {
	if !e.core.Alive() {
		return nil
	}
	e.log.Debug("engine shutting down")
	defaultEngine.mu.Lock()
	if defaultEngine.e == e {
		defaultEngine.e = nil
	}
	defaultEngine.mu.Unlock()
	e.core.Close()
	return nil
}

// RequestCancel posts an asynchronous interruption request. Safe from any
// goroutine and never blocks on evaluator progress; the evaluating thread
// observes the request at its next interruption-checked point.
func (e *Engine) RequestCancel() {
	e.core.RequestCancel()
	e.log.Debug("cancellation requested")
}

// Checkpoint is the interruption-checked point. Long-running host
// callbacks should call it periodically; Eval calls it between steps.
// Returns ErrCancelled when a pending request is consumed.
func (e *Engine) Checkpoint() error {
	if e.core.Checkpoint() {
		return ErrCancelled
	}
	return nil
}

// Print writes evaluated-code output through the device shim, restricting
// each request to the configured device buffer size.
func (e *Engine) Print(s string) error {
	e.core.MustBeAlive()
	data := []byte(s)
	for len(data) > 0 {
		n := len(data)
		if n > e.cfg.DeviceBufferSize {
			n = e.cfg.DeviceBufferSize
		}
		req := device.Request{Command: device.CmdWrite, Data: data[:n], Length: n}
		if err := e.dev.Dispatch(&req); err != nil {
			return err
		}
		data = data[req.Actual:]
	}
	return nil
}

// Default-engine registry. Constructors that omit an explicit engine
// resolve through here; it is process-wide state with an explicit
// init-before-use and teardown-invalidates-handles lifecycle.
var defaultEngine struct {
	mu sync.Mutex
	e  *Engine
}

// SetDefault registers the engine constructors fall back to when no
// explicit engine is supplied. Pass nil to clear.
func SetDefault(e *Engine) {
	defaultEngine.mu.Lock()
	defer defaultEngine.mu.Unlock()
	defaultEngine.e = e
}

// Default resolves the fallback engine. Every constructor that omits an
// explicit engine depends on this; with no running default the process
// cannot continue, so it panics.
func Default() *Engine {
	defaultEngine.mu.Lock()
	defer defaultEngine.mu.Unlock()
	if defaultEngine.e == nil || !defaultEngine.e.Alive() {
		panic("ren: no default engine is running; call SetDefault first or pass InEngine")
	}
	return defaultEngine.e
}

// HasDefault reports whether a running default engine is registered.
func HasDefault() bool {
	defaultEngine.mu.Lock()
	defer defaultEngine.mu.Unlock()
	return defaultEngine.e != nil && defaultEngine.e.Alive()
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine(%d)", e.id)
}
