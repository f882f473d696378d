package chakracore

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/buke/chakracore-go/abi"
)

// ThrownError carries a script value to throw from a NativeFunc. See Context.Throw.
type ThrownError struct {
	Value Value
}

// Error implements the error interface.
func (err *ThrownError) Error() string {
	return "chakracore: script value thrown"
}

// dispatch is the single trampoline behind every host function. callbackState is the
// closure registry token.
func (r *Runtime) dispatch(callee abi.ValueRef, isConstructCall bool, arguments []abi.ValueRef, argumentCount uint16, callbackState uintptr) (ret abi.ValueRef) {
	c, ok := r.closures.Load(callbackState)
	if !ok {
		r.throw(errors.WithStack(ErrFunctionReleased))
		return abi.InvalidReference
	}
	defer r.recoverPanic(&ret)

	// warm the undefined cache that Call.Arg falls back on
	if c.ctx.undefined.Load() == 0 {
		_, _ = c.ctx.Undefined()
	}

	// the engine's argument array is only valid during this call
	n := min(int(argumentCount), len(arguments))
	call := &Call{
		ctx:             c.ctx,
		Callee:          Function{ctx: c.ctx, ref: callee},
		IsConstructCall: isConstructCall,
		Arguments: lo.Map(arguments[:n], func(ref abi.ValueRef, _ int) Value {
			return Value{ctx: c.ctx, ref: ref}
		}),
	}

	result, err := c.fn(call)
	if err != nil {
		r.throw(err)
		return abi.InvalidReference
	}
	if result == nil {
		return abi.InvalidReference
	}
	return result.AsValue().ref
}

// recoverPanic turns a panic in a host function into a script Error.
func (r *Runtime) recoverPanic(ret *abi.ValueRef) {
	if rec := recover(); rec != nil {
		r.log.Error("panic in native function", zap.Any("panic", rec), zap.Stack("stack"))
		r.throw(errors.Errorf("panic in native function: %v", rec))
		*ret = abi.InvalidReference
	}
}

// throw sets err as the pending script exception: the carried value for a ThrownError, a
// new Error with err's message otherwise.
func (r *Runtime) throw(err error) {
	var thrown *ThrownError
	if errors.As(err, &thrown) {
		if code := r.engine.SetException(thrown.Value.ref); code != abi.NoError {
			r.log.Error("failed to throw script value", zap.Stringer("status", code))
		}
		return
	}

	var message, exception abi.ValueRef
	code := r.engine.CreateString([]byte(err.Error()), &message)
	if code == abi.NoError {
		code = r.engine.CreateError(message, &exception)
	}
	if code == abi.NoError {
		code = r.engine.SetException(exception)
	}
	if code != abi.NoError {
		r.log.Error("failed to throw native function error", zap.Error(err), zap.Stringer("status", code))
	}
}
