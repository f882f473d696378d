/*
Package gojaengine implements the abi.Engine function table on top of goja, a pure Go
ECMAScript engine.

Each script context owns one goja VM. Value handles are indices into an engine-wide table.
Handles minted while a native function runs (its arguments and anything the host creates
during the call) are dropped when it returns, unless AddRef was called on them. Other
handles stay valid until their runtime is disposed. The current context is tracked per OS
thread, so callers must pin their goroutine (runtime.LockOSThread) between setting the
current context and using it.

Objects cannot cross contexts: goja VMs do not share heaps. Primitive values can be used
in any context of the same runtime.
*/
package gojaengine

import (
	goruntime "runtime"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/buke/chakracore-go/abi"
	"github.com/buke/chakracore-go/internal/threadid"
)

// idleInterval is how far ahead Idle schedules the next idle tick.
const idleInterval = time.Second

// Engine is a goja-backed abi.Engine. The zero value is not usable; call New.
type Engine struct {
	logger  *zap.Logger
	console bool
	start   time.Time

	mu       sync.Mutex
	next     uintptr
	runtimes map[abi.RuntimeHandle]*jsRuntime
	contexts map[abi.ContextRef]*jsContext
	values   map[abi.ValueRef]*handle
	current  map[threadid.ID]*jsContext
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for engine diagnostics and console output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConsole installs a console object in every new context; its output goes to the
// engine logger.
func WithConsole(enabled bool) Option {
	return func(e *Engine) {
		e.console = enabled
	}
}

// New creates an engine with no runtimes.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		start:    time.Now(),
		runtimes: make(map[abi.RuntimeHandle]*jsRuntime),
		contexts: make(map[abi.ContextRef]*jsContext),
		values:   make(map[abi.ValueRef]*handle),
		current:  make(map[threadid.ID]*jsContext),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ abi.Engine = (*Engine)(nil)

// Version implements abi.Engine.
func (e *Engine) Version() string {
	return abi.Version
}

type jsRuntime struct {
	ref        abi.RuntimeHandle
	attributes abi.RuntimeAttributes
	// values holds long-lived handles; scopes holds one list per native callback in
	// progress, innermost last.
	values     []abi.ValueRef
	scopes     [][]abi.ValueRef
	contexts   []*jsContext
	finalizers []finalizer
	// exception is non-nil while the runtime is in an exception state.
	exception goja.Value
	// running counts scripts and calls in progress.
	running int
}

type finalizer struct {
	fn    abi.FinalizeCallback
	state uintptr
}

// handle is one entry of the value table.
type handle struct {
	ctx   *jsContext
	value goja.Value
	refs  uint32
}

// nextRefLocked hands out table keys; runtimes, contexts and values share one sequence.
func (e *Engine) nextRefLocked() uintptr {
	e.next++
	return e.next
}

// CreateRuntime implements abi.Engine. goja never schedules background work, so
// threadService is accepted and never invoked.
func (e *Engine) CreateRuntime(attributes abi.RuntimeAttributes, threadService abi.ThreadServiceCallback, runtime *abi.RuntimeHandle) abi.ErrorCode {
	if runtime == nil {
		return abi.ErrorNullArgument
	}
	if attributes&^abi.RuntimeAttributeAll != 0 {
		return abi.ErrorInvalidArgument
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rt := &jsRuntime{
		ref:        abi.RuntimeHandle(e.nextRefLocked()),
		attributes: attributes,
	}
	e.runtimes[rt.ref] = rt
	*runtime = rt.ref

	e.logger.Debug("runtime created", zap.Uintptr("runtime", uintptr(rt.ref)), zap.Uint32("attributes", uint32(attributes)))
	return abi.NoError
}

// DisposeRuntime implements abi.Engine. It fails with ErrorRuntimeInUse while a context of
// the runtime is current on any thread or while script is running.
func (e *Engine) DisposeRuntime(runtime abi.RuntimeHandle) abi.ErrorCode {
	e.mu.Lock()
	rt := e.runtimes[runtime]
	if rt == nil {
		e.mu.Unlock()
		return abi.ErrorInvalidArgument
	}
	if rt.running > 0 {
		e.mu.Unlock()
		return abi.ErrorRuntimeInUse
	}
	for _, c := range e.current {
		if c.rt == rt {
			e.mu.Unlock()
			return abi.ErrorRuntimeInUse
		}
	}

	for _, ref := range rt.values {
		delete(e.values, ref)
	}
	for _, scope := range rt.scopes {
		for _, ref := range scope {
			delete(e.values, ref)
		}
	}
	for _, c := range rt.contexts {
		delete(e.contexts, c.ref)
	}
	delete(e.runtimes, runtime)
	finalizers := rt.finalizers
	e.mu.Unlock()

	for _, f := range finalizers {
		f.fn(f.state)
	}

	e.logger.Debug("runtime disposed",
		zap.Uintptr("runtime", uintptr(runtime)),
		zap.Int("values", len(rt.values)),
		zap.Int("contexts", len(rt.contexts)))
	return abi.NoError
}

// CollectGarbage implements abi.Engine. goja shares the Go heap, so this runs a Go
// collection.
func (e *Engine) CollectGarbage(runtime abi.RuntimeHandle) abi.ErrorCode {
	e.mu.Lock()
	rt := e.runtimes[runtime]
	var code abi.ErrorCode
	switch {
	case rt == nil:
		code = abi.ErrorInvalidArgument
	case rt.running > 0:
		code = abi.ErrorRuntimeInUse
	}
	e.mu.Unlock()
	if code != abi.NoError {
		return code
	}

	goruntime.GC()
	return abi.NoError
}

// CreateContext implements abi.Engine.
func (e *Engine) CreateContext(runtime abi.RuntimeHandle, newContext *abi.ContextRef) abi.ErrorCode {
	if newContext == nil {
		return abi.ErrorNullArgument
	}

	e.mu.Lock()
	rt := e.runtimes[runtime]
	e.mu.Unlock()
	if rt == nil {
		return abi.ErrorInvalidArgument
	}

	c, err := newJSContext(rt, e.console, e.logger)
	if err != nil {
		e.logger.Error("failed to initialize context", zap.Error(err))
		return abi.ErrorFatal
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.runtimes[runtime] != rt {
		// disposed while the VM was being built
		return abi.ErrorInvalidArgument
	}
	c.ref = abi.ContextRef(e.nextRefLocked())
	rt.contexts = append(rt.contexts, c)
	e.contexts[c.ref] = c
	*newContext = c.ref
	return abi.NoError
}

// SetCurrentContext implements abi.Engine. InvalidReference clears the calling thread's
// current context; clearing when none is set succeeds.
func (e *Engine) SetCurrentContext(context abi.ContextRef) abi.ErrorCode {
	tid := threadid.Current()

	e.mu.Lock()
	defer e.mu.Unlock()

	if context == abi.InvalidReference {
		delete(e.current, tid)
		return abi.NoError
	}
	c := e.contexts[context]
	if c == nil {
		return abi.ErrorInvalidArgument
	}
	e.current[tid] = c
	return abi.NoError
}

// GetCurrentContext implements abi.Engine.
func (e *Engine) GetCurrentContext(currentContext *abi.ContextRef) abi.ErrorCode {
	if currentContext == nil {
		return abi.ErrorNullArgument
	}
	tid := threadid.Current()

	e.mu.Lock()
	defer e.mu.Unlock()

	*currentContext = abi.InvalidReference
	if c := e.current[tid]; c != nil {
		*currentContext = c.ref
	}
	return abi.NoError
}

// Idle implements abi.Engine.
func (e *Engine) Idle(nextIdleTick *uint32) abi.ErrorCode {
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	if !c.rt.attributes.Has(abi.RuntimeAttributeEnableIdleProcessing) {
		return abi.ErrorIdleNotEnabled
	}
	if nextIdleTick != nil {
		*nextIdleTick = uint32((time.Since(e.start) + idleInterval).Milliseconds())
	}
	return abi.NoError
}

// currentContext returns the calling thread's current context.
func (e *Engine) currentContext() (*jsContext, abi.ErrorCode) {
	tid := threadid.Current()

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.current[tid]
	if c == nil {
		return nil, abi.ErrorNoCurrentContext
	}
	return c, abi.NoError
}

// enter is currentContext for entry points that are refused while the runtime is in an
// exception state.
func (e *Engine) enter() (*jsContext, abi.ErrorCode) {
	tid := threadid.Current()

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.current[tid]
	if c == nil {
		return nil, abi.ErrorNoCurrentContext
	}
	if c.rt.exception != nil {
		return nil, abi.ErrorInExceptionState
	}
	return c, abi.NoError
}

// track adjusts the count of running scripts and calls of rt.
func (e *Engine) track(rt *jsRuntime, delta int) {
	e.mu.Lock()
	rt.running += delta
	e.mu.Unlock()
}
