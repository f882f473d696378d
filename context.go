package chakracore

import (
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/buke/chakracore-go/abi"
)

// Context represents a script realm with its own global object. A context must be current
// on the calling thread before values can be created or scripts run in it.
type Context struct {
	runtime *Runtime
	ref     abi.ContextRef

	// undefined caches the context's undefined handle once fetched; zero until then.
	undefined atomic.Uintptr
}

// Runtime returns the runtime of the context.
func (ctx *Context) Runtime() *Runtime {
	return ctx.runtime
}

func (ctx *Context) engine() (abi.Engine, error) {
	if err := ctx.runtime.check(); err != nil {
		return nil, err
	}
	return ctx.runtime.engine, nil
}

// IsCurrent reports whether ctx is current on the calling thread.
func (ctx *Context) IsCurrent() (bool, error) {
	engine, err := ctx.engine()
	if err != nil {
		return false, err
	}
	var current abi.ContextRef
	if err := classify("get current context", engine.GetCurrentContext(&current)); err != nil {
		return false, err
	}
	return current == ctx.ref, nil
}

// Enter makes ctx current on the calling thread and pins the goroutine to that thread until
// Exit. Entering the current context again is a no-op. Enter fails with ErrContextBusy if
// another context is current on the thread.
func (ctx *Context) Enter() error {
	engine, err := ctx.engine()
	if err != nil {
		return err
	}

	runtime.LockOSThread()
	var current abi.ContextRef
	if err := classify("get current context", engine.GetCurrentContext(&current)); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	switch current {
	case ctx.ref:
		runtime.UnlockOSThread()
		return nil
	case abi.InvalidReference:
	default:
		runtime.UnlockOSThread()
		return errors.WithStack(ErrContextBusy)
	}

	if err := classify("set current context", engine.SetCurrentContext(ctx.ref)); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	return nil
}

// Exit clears the calling thread's current context if it is ctx and unpins the goroutine.
// Exiting a context that is not current is a no-op.
func (ctx *Context) Exit() error {
	if ctx.runtime.closed.Load() {
		return nil
	}
	current, err := ctx.IsCurrent()
	if err != nil || !current {
		return err
	}
	if err := classify("clear current context", ctx.runtime.engine.SetCurrentContext(abi.InvalidReference)); err != nil {
		return err
	}
	runtime.UnlockOSThread()
	return nil
}

// With runs fn with ctx current and restores the previous state afterwards, including when
// fn panics. If ctx is already current, fn runs directly.
func (ctx *Context) With(fn func(*Context) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	current, err := ctx.IsCurrent()
	if err != nil {
		return err
	}
	if current {
		return fn(ctx)
	}

	if err := ctx.Enter(); err != nil {
		return err
	}
	defer ctx.mustExit()
	return fn(ctx)
}

// Close exits ctx if it is current. The engine reclaims the context with its runtime.
// Close panics if the current context cannot be cleared.
func (ctx *Context) Close() {
	ctx.mustExit()
}

func (ctx *Context) mustExit() {
	if err := ctx.Exit(); err != nil {
		panic(errors.Wrap(err, "chakracore: exit context"))
	}
}

// Idle gives the engine a chance to do idle-time work and returns the tick, in
// milliseconds, at which it wants to be called again. The runtime must have been created
// with EnableIdleProcessing.
func (ctx *Context) Idle() (uint32, error) {
	engine, err := ctx.engine()
	if err != nil {
		return 0, err
	}
	var next uint32
	if err := classify("idle", engine.Idle(&next)); err != nil {
		return 0, err
	}
	return next, nil
}

// Undefined returns the undefined value.
func (ctx *Context) Undefined() (Value, error) {
	v, err := ctx.produce("get undefined", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.GetUndefinedValue(ref)
	})
	if err == nil {
		ctx.undefined.Store(uintptr(v.ref))
	}
	return v, err
}

// Null returns the null value.
func (ctx *Context) Null() (Value, error) {
	return ctx.produce("get null", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.GetNullValue(ref)
	})
}

// Bool returns a boolean value.
func (ctx *Context) Bool(b bool) (Boolean, error) {
	v, err := ctx.produce("create boolean", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.BoolToBoolean(b, ref)
	})
	return Boolean(v), err
}

// Int32 returns a number value.
func (ctx *Context) Int32(n int32) (Number, error) {
	v, err := ctx.produce("create number", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.IntToNumber(n, ref)
	})
	return Number(v), err
}

// Float64 returns a number value.
func (ctx *Context) Float64(f float64) (Number, error) {
	v, err := ctx.produce("create number", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.DoubleToNumber(f, ref)
	})
	return Number(v), err
}

// String returns a string value holding s.
func (ctx *Context) String(s string) (String, error) {
	return ctx.StringBytes([]byte(s))
}

// StringBytes returns a string value holding the UTF-8 text b.
func (ctx *Context) StringBytes(b []byte) (String, error) {
	v, err := ctx.produce("create string", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.CreateString(b, ref)
	})
	return String(v), err
}

// Object returns a new empty object.
func (ctx *Context) Object() (Object, error) {
	v, err := ctx.produce("create object", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.CreateObject(ref)
	})
	return Object(v), err
}

// Global returns the global object of the current context.
func (ctx *Context) Global() (Object, error) {
	v, err := ctx.produce("get global object", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.GetGlobalObject(ref)
	})
	return Object(v), err
}

// Error returns a new Error object with the given message.
func (ctx *Context) Error(message string) (Object, error) {
	msg, err := ctx.String(message)
	if err != nil {
		return Object{}, err
	}
	v, err := ctx.produce("create error", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.CreateError(msg.ref, ref)
	})
	return Object(v), err
}

// Throw returns an error that, when returned from a NativeFunc, throws v into the calling
// script.
func (ctx *Context) Throw(v Valuer) error {
	return &ThrownError{Value: v.AsValue()}
}

// Eval compiles and runs source in ctx, which must be current.
func (ctx *Context) Eval(source string, opts ...EvalOption) (Value, error) {
	options := EvalOptions{FileName: "<eval>"}
	for _, opt := range opts {
		opt(&options)
	}

	script, err := ctx.NewScript(options.FileName, []byte(source))
	if err != nil {
		return Value{}, err
	}
	defer script.Close()
	if options.LibraryCode {
		script.attributes |= abi.ParseScriptAttributeLibraryCode
	}
	return ctx.runtime.Run(script)
}

// EvalOptions configures Context.Eval.
type EvalOptions struct {
	// FileName is the source URL reported in stack traces.
	FileName string
	// LibraryCode hides the script from the debugger.
	LibraryCode bool
}

// EvalOption configures EvalOptions using the functional options pattern.
type EvalOption func(*EvalOptions)

// EvalFileName sets the source URL of the evaluated script.
func EvalFileName(filename string) EvalOption {
	return func(o *EvalOptions) {
		o.FileName = filename
	}
}

// EvalLibraryCode marks the evaluated script as library code.
func EvalLibraryCode(library bool) EvalOption {
	return func(o *EvalOptions) {
		o.LibraryCode = library
	}
}

// produce runs one value-producing engine entry point.
func (ctx *Context) produce(op string, call func(abi.Engine, *abi.ValueRef) abi.ErrorCode) (Value, error) {
	engine, err := ctx.engine()
	if err != nil {
		return Value{}, err
	}
	var ref abi.ValueRef
	if err := classify(op, call(engine, &ref)); err != nil {
		return Value{}, err
	}
	return Value{ctx: ctx, ref: ref}, nil
}
