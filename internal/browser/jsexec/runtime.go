// internal/browser/jsexec/runtime.go
package jsexec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a flush whose context has no deadline.
const DefaultTimeout = 30 * time.Second

// ScriptError reports a deferred script that failed during a flush.
type ScriptError struct {
	Index  int
	Source string
	Err    error
}

func (e *ScriptError) Error() string {
	src := e.Source
	if len(src) > 40 {
		src = src[:40] + "..."
	}
	return fmt.Sprintf("deferred script %d (%q): %v", e.Index, src, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Runtime queues script sources extracted from inserted markup and evaluates
// them later, in order, on a goja event loop. Nothing runs until Flush.
type Runtime struct {
	loop    *eventloop.EventLoop
	logger  *zap.Logger
	timeout time.Duration

	mu         sync.Mutex
	queue      []string
	bindings   map[string]any
	installers []Installer
	executed   int
}

// Installer prepares the VM before any script runs, e.g. to define globals
// that need the VM itself.
type Installer func(vm *goja.Runtime) error

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the budget for a flush without a context deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRuntime(logger *zap.Logger, opts ...Option) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runtime{
		loop:     eventloop.NewEventLoop(),
		logger:   logger.Named("jsexec"),
		timeout:  DefaultTimeout,
		bindings: make(map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Defer appends scripts to the queue. Empty sources are dropped.
func (r *Runtime) Defer(scripts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range scripts {
		if s != "" {
			r.queue = append(r.queue, s)
		}
	}
}

// Bind exposes a Go value as a global to every later evaluation.
func (r *Runtime) Bind(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[name] = value
}

// Install registers fn to run against the VM ahead of every flush and
// evaluation, after the plain bindings are set.
func (r *Runtime) Install(fn Installer) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installers = append(r.installers, fn)
}

// Pending returns the number of queued scripts.
func (r *Runtime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

func (r *Runtime) next() (string, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return "", 0, false
	}
	s := r.queue[0]
	r.queue = r.queue[1:]
	r.executed++
	return s, r.executed, true
}

// prepare sets the bindings and runs the installers.
func (r *Runtime) prepare(vm *goja.Runtime) error {
	r.mu.Lock()
	bindings := make(map[string]any, len(r.bindings))
	for k, v := range r.bindings {
		bindings[k] = v
	}
	installers := append([]Installer(nil), r.installers...)
	r.mu.Unlock()

	for name, value := range bindings {
		if err := vm.Set(name, value); err != nil {
			return fmt.Errorf("failed to bind %q: %w", name, err)
		}
	}
	for _, fn := range installers {
		if err := fn(vm); err != nil {
			return fmt.Errorf("failed to prepare runtime: %w", err)
		}
	}
	return nil
}

// Flush evaluates queued scripts in FIFO order, including scripts queued
// while the flush is running, then drains pending timers. A failing script
// does not stop the ones after it; all failures are joined.
func (r *Runtime) Flush(ctx context.Context) error {
	if r.Pending() == 0 {
		return nil
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var errs []error
	r.loop.Run(func(vm *goja.Runtime) {
		stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
		defer stop()
		defer vm.ClearInterrupt()

		if err := r.prepare(vm); err != nil {
			errs = append(errs, err)
			return
		}

		for {
			script, index, ok := r.next()
			if !ok {
				return
			}
			if _, err := vm.RunString(script); err != nil {
				r.logger.Warn("Deferred script failed.", zap.Int("index", index), zap.Error(err))
				var interrupted *goja.InterruptedError
				if errors.As(err, &interrupted) {
					errs = append(errs, &ScriptError{Index: index, Source: script, Err: fmt.Errorf("interrupted: %w", ctx.Err())})
					return
				}
				errs = append(errs, &ScriptError{Index: index, Source: script, Err: err})
			}
		}
	})
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	r.logger.Debug("Flushed deferred scripts.")
	return nil
}

// Evaluate runs a script immediately and exports its completion value. It is
// meant for inspection; mutations go through Defer.
func (r *Runtime) Evaluate(ctx context.Context, script string) (any, error) {
	var (
		result any
		err    error
	)
	r.loop.Run(func(vm *goja.Runtime) {
		stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
		defer stop()
		defer vm.ClearInterrupt()

		if err = r.prepare(vm); err != nil {
			return
		}
		var v goja.Value
		v, err = vm.RunString(script)
		if err != nil {
			var jsErr *goja.Exception
			if errors.As(err, &jsErr) {
				err = fmt.Errorf("javascript exception: %s", jsErr.String())
			}
			return
		}
		result = v.Export()
	})
	return result, err
}
