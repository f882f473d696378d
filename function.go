package chakracore

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/buke/chakracore-go/abi"
)

// NativeFunc is a host function callable from script. Returning a nil Valuer yields
// undefined; returning an error throws it into the calling script.
type NativeFunc func(call *Call) (Valuer, error)

// Call describes one invocation of a NativeFunc. Its values are only valid during the call
// unless retained.
type Call struct {
	ctx *Context

	// Callee is the function being invoked.
	Callee Function
	// IsConstructCall reports whether the function was invoked with new.
	IsConstructCall bool
	// Arguments holds the receiver at index 0, followed by the call arguments.
	Arguments []Value
}

// Context returns the context the function was created in.
func (c *Call) Context() *Context {
	return c.ctx
}

// This returns the receiver.
func (c *Call) This() Value {
	if len(c.Arguments) == 0 {
		return Value{}
	}
	return c.Arguments[0]
}

// Args returns the call arguments without the receiver.
func (c *Call) Args() []Value {
	if len(c.Arguments) == 0 {
		return nil
	}
	return c.Arguments[1:]
}

// Arg returns the i-th call argument, or undefined if it was not passed. When the engine
// cannot produce undefined, for instance while an exception is pending, the context's
// cached undefined handle is used.
func (c *Call) Arg(i int) Value {
	if args := c.Args(); i >= 0 && i < len(args) {
		return args[i]
	}
	v, err := c.ctx.Undefined()
	if err != nil {
		c.ctx.runtime.log.Warn("undefined unavailable for missing argument", zap.Int("index", i), zap.Error(err))
		return Value{ctx: c.ctx, ref: abi.ValueRef(c.ctx.undefined.Load())}
	}
	return v
}

// Thunk adapts a function with no arguments and no result.
func Thunk(fn func()) NativeFunc {
	return func(*Call) (Valuer, error) {
		fn()
		return nil, nil
	}
}

// Action adapts a function that inspects the call and returns nothing.
func Action(fn func(*Call)) NativeFunc {
	return func(call *Call) (Valuer, error) {
		fn(call)
		return nil, nil
	}
}

// Int32Func adapts a function returning an int32.
func Int32Func(fn func(*Call) int32) NativeFunc {
	return func(call *Call) (Valuer, error) {
		return call.ctx.Int32(fn(call))
	}
}

// Float64Func adapts a function returning a float64.
func Float64Func(fn func(*Call) float64) NativeFunc {
	return func(call *Call) (Valuer, error) {
		return call.ctx.Float64(fn(call))
	}
}

// BoolFunc adapts a function returning a bool.
func BoolFunc(fn func(*Call) bool) NativeFunc {
	return func(call *Call) (Valuer, error) {
		return call.ctx.Bool(fn(call))
	}
}

// StringFunc adapts a function returning a string.
func StringFunc(fn func(*Call) string) NativeFunc {
	return func(call *Call) (Valuer, error) {
		return call.ctx.String(fn(call))
	}
}

// Function is a Value known to be callable.
type Function Value

// AsValue implements Valuer.
func (f Function) AsValue() Value {
	return Value(f)
}

// Object returns the function as an object, to access its properties.
func (f Function) Object() Object {
	return Object(f)
}

// Function wraps fn in a script function. fn stays registered until Function.Release or
// until the runtime is closed.
func (ctx *Context) Function(fn NativeFunc) (Function, error) {
	engine, err := ctx.engine()
	if err != nil {
		return Function{}, err
	}

	r := ctx.runtime
	token := r.closures.Store(&closure{ctx: ctx, fn: fn})
	var ref abi.ValueRef
	if err := classify("create function", engine.CreateFunction(r.dispatch, token, &ref)); err != nil {
		r.closures.Delete(token)
		return Function{}, err
	}
	r.closures.Bind(token, ref)
	return Function{ctx: ctx, ref: ref}, nil
}

// Call invokes the function with this as the receiver.
func (f Function) Call(this Valuer, args ...Valuer) (Value, error) {
	refs := f.arguments(this, args)
	return Value(f).derive("call function", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.CallFunction(f.ref, refs, ref)
	})
}

// New invokes the function as a constructor.
func (f Function) New(args ...Valuer) (Object, error) {
	undefined, err := f.ctx.Undefined()
	if err != nil {
		return Object{}, err
	}
	refs := f.arguments(undefined, args)
	v, err := Value(f).derive("construct object", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.ConstructObject(f.ref, refs, ref)
	})
	return Object(v), err
}

func (f Function) arguments(this Valuer, args []Valuer) []abi.ValueRef {
	return append([]abi.ValueRef{this.AsValue().ref}, lo.Map(args, func(a Valuer, _ int) abi.ValueRef {
		return a.AsValue().ref
	})...)
}

// Release unregisters the host function behind f. Later calls from script throw an Error.
// It fails with ErrFunctionReleased if f has no registered host function.
func (f Function) Release() error {
	if f.ctx == nil || !f.ctx.runtime.closures.DeleteRef(f.ref) {
		return errors.WithStack(ErrFunctionReleased)
	}
	return nil
}
