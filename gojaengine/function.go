package gojaengine

import (
	"math"
	"strconv"
	"sync"

	"github.com/dop251/goja"

	"github.com/buke/chakracore-go/abi"
)

// argPool recycles the argument arrays handed to native functions. An array is zeroed
// before it goes back, so a callee that keeps it past the call sees only invalid refs.
var argPool = sync.Pool{
	New: func() any {
		buf := make([]abi.ValueRef, 0, 8)
		return &buf
	},
}

func getArgs(n int) *[]abi.ValueRef {
	buf := argPool.Get().(*[]abi.ValueRef)
	if cap(*buf) < n {
		*buf = make([]abi.ValueRef, n)
	}
	*buf = (*buf)[:n]
	return buf
}

func putArgs(buf *[]abi.ValueRef) {
	clear(*buf)
	*buf = (*buf)[:0]
	argPool.Put(buf)
}

// CreateFunction implements abi.Engine. The function is constructible; the callback sees
// the receiver as arguments[0].
func (e *Engine) CreateFunction(nativeFunction abi.NativeFunction, callbackState uintptr, function *abi.ValueRef) abi.ErrorCode {
	if nativeFunction == nil || function == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}

	var callee abi.ValueRef
	impl := c.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return e.invoke(c, nativeFunction, callbackState, callee, call)
	})
	fn, err := c.fn.native(goja.Undefined(), impl)
	if err != nil {
		return e.fail(c, err)
	}
	e.mu.Lock()
	callee = e.pinRefLocked(c, fn.(*goja.Object))
	e.mu.Unlock()
	*function = callee
	return abi.NoError
}

// invoke runs a native callback for the shim created by CreateFunction. call carries
// (isConstructCall, this, arguments).
func (e *Engine) invoke(c *jsContext, fn abi.NativeFunction, state uintptr, callee abi.ValueRef, call goja.FunctionCall) goja.Value {
	isConstructCall := call.Argument(0).ToBoolean()
	values := []goja.Value{call.Argument(1)}
	if args, ok := call.Argument(2).(*goja.Object); ok {
		n := args.Get("length").ToInteger()
		if n+1 > math.MaxUint16 {
			panic(c.vm.NewTypeError("too many arguments: %d", n))
		}
		for i := int64(0); i < n; i++ {
			values = append(values, args.Get(strconv.FormatInt(i, 10)))
		}
	}

	buf := getArgs(len(values))
	defer putArgs(buf)
	e.mu.Lock()
	e.openScopeLocked(c.rt)
	defer func() {
		e.mu.Lock()
		e.closeScopeLocked(c.rt)
		e.mu.Unlock()
	}()
	for i, v := range values {
		(*buf)[i] = e.newRefLocked(c, v)
	}
	e.mu.Unlock()

	ret := fn(callee, isConstructCall, *buf, uint16(len(values)), state)

	e.mu.Lock()
	exception := c.rt.exception
	c.rt.exception = nil
	var result goja.Value
	code := abi.NoError
	if exception == nil && ret != abi.InvalidReference {
		result, code = e.resolveLocked(c, ret)
	}
	e.mu.Unlock()

	switch {
	case exception != nil:
		panic(exception)
	case ret == abi.InvalidReference:
		return goja.Undefined()
	case code != abi.NoError:
		panic(c.vm.NewTypeError("native function returned an invalid value"))
	}
	return result
}
