package chakracore

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/buke/chakracore-go/abi"
)

// Runtime represents an isolated engine heap with its own garbage collector. Contexts of one
// runtime can share objects; different runtimes cannot exchange values.
type Runtime struct {
	engine abi.Engine
	handle abi.RuntimeHandle
	attrs  Attributes
	log    *zap.Logger

	closures *closureRegistry
	retained atomic.Int64
	cookies  atomic.Uintptr
	closed   atomic.Bool

	mu       sync.Mutex
	contexts map[abi.ContextRef]*Context
	scripts  map[*Script]struct{}
}

// NewRuntime creates a runtime. The engine's ABI version must satisfy abi.Constraint.
func NewRuntime(opts ...Option) (*Runtime, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	engine := options.Engine
	if engine == nil {
		var err error
		if engine, err = newDefaultEngine(); err != nil {
			return nil, err
		}
	}
	if err := abi.CheckVersion(engine.Version()); err != nil {
		return nil, errors.Wrap(ErrIncompatibleEngine, err.Error())
	}

	log := options.Logger
	if log == nil {
		log = Logger()
	}

	r := &Runtime{
		engine:   engine,
		attrs:    options.Attributes,
		log:      log,
		closures: newClosureRegistry(),
		contexts: make(map[abi.ContextRef]*Context),
		scripts:  make(map[*Script]struct{}),
	}
	if err := classify("create runtime", engine.CreateRuntime(options.Attributes.Bits(), nil, &r.handle)); err != nil {
		return nil, err
	}

	r.log.Debug("runtime created",
		zap.Uintptr("runtime", uintptr(r.handle)),
		zap.Uint32("attributes", uint32(options.Attributes.Bits())))
	return r, nil
}

// Attributes returns the attributes the runtime was created with.
func (r *Runtime) Attributes() Attributes {
	return r.attrs
}

// Engine returns the engine function table the runtime is bound to.
func (r *Runtime) Engine() abi.Engine {
	return r.engine
}

// check fails once the runtime is closed.
func (r *Runtime) check() error {
	if r.closed.Load() {
		return errors.WithStack(ErrRuntimeClosed)
	}
	return nil
}

// NewContext creates a script context in the runtime. The context is not current.
func (r *Runtime) NewContext() (*Context, error) {
	if err := r.check(); err != nil {
		return nil, err
	}

	ctx := &Context{runtime: r}
	if err := classify("create context", r.engine.CreateContext(r.handle, &ctx.ref)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.contexts[ctx.ref] = ctx
	r.mu.Unlock()
	return ctx, nil
}

// current returns the context current on the calling thread if it belongs to r.
func (r *Runtime) current() (*Context, error) {
	var ref abi.ContextRef
	if err := classify("get current context", r.engine.GetCurrentContext(&ref)); err != nil {
		return nil, err
	}
	if ref == abi.InvalidReference {
		return nil, classify("get current context", abi.ErrorNoCurrentContext)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, ok := r.contexts[ref]
	if !ok {
		return nil, classify("get current context", abi.ErrorWrongRuntime)
	}
	return ctx, nil
}

// Run executes script in the current context and returns its completion value. A script
// that throws or fails to compile yields an error matching ErrScriptException or
// ErrScriptCompile; the pending exception is cleared so the context stays usable.
func (r *Runtime) Run(script *Script) (Value, error) {
	if err := r.check(); err != nil {
		return Value{}, err
	}
	ctx, err := r.current()
	if err != nil {
		return Value{}, err
	}
	if err := script.acquire(); err != nil {
		return Value{}, err
	}
	defer script.release()

	var result abi.ValueRef
	code := r.engine.Run(script.buffer.ref, script.cookie, script.name.ref, script.attributes, &result)
	if err := r.status("run script", code); err != nil {
		r.log.Debug("script failed", zap.String("script", script.Name()), zap.Error(err))
		return Value{}, err
	}
	return Value{ctx: ctx, ref: result}, nil
}

// status classifies code. A script failure also clears the pending exception, so the
// context stays usable.
func (r *Runtime) status(op string, code abi.ErrorCode) error {
	if code.Category() == abi.CategoryScript {
		r.clearException()
	}
	return classify(op, code)
}

// clearException drops the pending script exception, if any.
func (r *Runtime) clearException() {
	var exception abi.ValueRef
	if code := r.engine.GetAndClearException(&exception); code != abi.NoError {
		r.log.Debug("no exception to clear", zap.Stringer("status", code))
	}
}

// CollectGarbage runs a full collection.
func (r *Runtime) CollectGarbage() error {
	if err := r.check(); err != nil {
		return err
	}
	return classify("collect garbage", r.engine.CollectGarbage(r.handle))
}

// Close disposes the runtime. It fails with an error matching ErrRuntimeInUse while one of
// its contexts is current on any thread, while script is running, or while values are
// retained. After a successful Close every registered function and open script is
// released; further calls return nil.
func (r *Runtime) Close() error {
	if r.closed.Load() {
		return nil
	}

	if n := r.retained.Load(); n > 0 {
		err := classify("dispose runtime", abi.ErrorRuntimeInUse)
		r.log.Error("runtime disposal failed", zap.Error(err), zap.Int64("retained", n))
		return err
	}
	if err := classify("dispose runtime", r.engine.DisposeRuntime(r.handle)); err != nil {
		r.log.Error("runtime disposal failed", zap.Error(err))
		return err
	}
	if r.closed.Swap(true) {
		return nil
	}

	closures := r.closures.Clear()
	r.mu.Lock()
	scripts := r.scripts
	r.scripts = nil
	r.contexts = nil
	r.mu.Unlock()
	for s := range scripts {
		s.dispose()
	}

	r.log.Debug("runtime disposed",
		zap.Uintptr("runtime", uintptr(r.handle)),
		zap.Int("functions", closures),
		zap.Int("scripts", len(scripts)))
	return nil
}

func (r *Runtime) trackScript(s *Script) {
	r.mu.Lock()
	if r.scripts != nil {
		r.scripts[s] = struct{}{}
	}
	r.mu.Unlock()
}

func (r *Runtime) untrackScript(s *Script) {
	r.mu.Lock()
	delete(r.scripts, s)
	r.mu.Unlock()
}
