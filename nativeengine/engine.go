//go:build chakracore && cgo

package nativeengine

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
#include <ChakraCore.h>

JsErrorCode createFunction(uintptr_t token, JsValueRef *function);
JsErrorCode createExternalArrayBuffer(void *data, unsigned int byteLength, uintptr_t token, JsValueRef *result);

static inline JsValueRef asValue(uintptr_t p) { return (JsValueRef)p; }
static inline JsRuntimeHandle asRuntime(uintptr_t p) { return (JsRuntimeHandle)p; }
static inline JsContextRef asContext(uintptr_t p) { return (JsContextRef)p; }
*/
import "C"
import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/buke/chakracore-go/abi"
)

// Engine is the ChakraCore function table. The library is process-global, so every Engine
// value shares its state.
type Engine struct{}

// New returns the ChakraCore engine.
func New() *Engine {
	return &Engine{}
}

var _ abi.Engine = (*Engine)(nil)

// Host callbacks are keyed by tokens that stand in for callback state.
type hostFunction struct {
	fn      abi.NativeFunction
	state   uintptr
	runtime abi.RuntimeHandle
}

type hostFinalizer struct {
	fn      abi.FinalizeCallback
	state   uintptr
	runtime abi.RuntimeHandle
}

var (
	functions  sync.Map // map[uintptr]*hostFunction
	finalizers sync.Map // map[uintptr]*hostFinalizer
	nextToken  atomic.Uintptr
)

func toRef(v abi.ValueRef) C.JsValueRef {
	return C.asValue(C.uintptr_t(v))
}

func fromRef(r C.JsValueRef) abi.ValueRef {
	return abi.ValueRef(uintptr(unsafe.Pointer(r)))
}

func status(code C.JsErrorCode) abi.ErrorCode {
	return abi.ErrorCode(code)
}

// out runs a call producing a JsValueRef into *result.
func out(result *abi.ValueRef, call func(*C.JsValueRef) C.JsErrorCode) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	var ref C.JsValueRef
	code := status(call(&ref))
	if code == abi.NoError {
		*result = fromRef(ref)
	}
	return code
}

// currentRuntime returns the runtime of the calling thread's current context.
func currentRuntime() abi.RuntimeHandle {
	var ctx C.JsContextRef
	if C.JsGetCurrentContext(&ctx) != C.JsNoError || ctx == nil {
		return abi.InvalidRuntimeHandle
	}
	var rt C.JsRuntimeHandle
	if C.JsGetRuntime(ctx, &rt) != C.JsNoError {
		return abi.InvalidRuntimeHandle
	}
	return abi.RuntimeHandle(uintptr(unsafe.Pointer(rt)))
}

// Version implements abi.Engine. JSRT has no version entry point; this is the release the
// binding is built against.
func (e *Engine) Version() string {
	return abi.Version
}

// CreateRuntime implements abi.Engine. Host-scheduled background work is not supported;
// threadService must be nil.
func (e *Engine) CreateRuntime(attributes abi.RuntimeAttributes, threadService abi.ThreadServiceCallback, runtime *abi.RuntimeHandle) abi.ErrorCode {
	if runtime == nil {
		return abi.ErrorNullArgument
	}
	if threadService != nil {
		return abi.ErrorNotImplemented
	}
	var rt C.JsRuntimeHandle
	code := status(C.JsCreateRuntime(C.JsRuntimeAttributes(attributes), nil, &rt))
	if code == abi.NoError {
		*runtime = abi.RuntimeHandle(uintptr(unsafe.Pointer(rt)))
	}
	return code
}

// DisposeRuntime implements abi.Engine.
func (e *Engine) DisposeRuntime(runtime abi.RuntimeHandle) abi.ErrorCode {
	code := status(C.JsDisposeRuntime(C.asRuntime(C.uintptr_t(runtime))))
	if code != abi.NoError {
		return code
	}
	for _, m := range []*sync.Map{&functions, &finalizers} {
		m.Range(func(key, value any) bool {
			var owner abi.RuntimeHandle
			switch v := value.(type) {
			case *hostFunction:
				owner = v.runtime
			case *hostFinalizer:
				owner = v.runtime
			}
			if owner == runtime {
				m.Delete(key)
			}
			return true
		})
	}
	return abi.NoError
}

// CollectGarbage implements abi.Engine.
func (e *Engine) CollectGarbage(runtime abi.RuntimeHandle) abi.ErrorCode {
	return status(C.JsCollectGarbage(C.asRuntime(C.uintptr_t(runtime))))
}

// CreateContext implements abi.Engine.
func (e *Engine) CreateContext(runtime abi.RuntimeHandle, newContext *abi.ContextRef) abi.ErrorCode {
	if newContext == nil {
		return abi.ErrorNullArgument
	}
	var ctx C.JsContextRef
	code := status(C.JsCreateContext(C.asRuntime(C.uintptr_t(runtime)), &ctx))
	if code == abi.NoError {
		*newContext = abi.ContextRef(uintptr(unsafe.Pointer(ctx)))
	}
	return code
}

// SetCurrentContext implements abi.Engine.
func (e *Engine) SetCurrentContext(context abi.ContextRef) abi.ErrorCode {
	return status(C.JsSetCurrentContext(C.asContext(C.uintptr_t(context))))
}

// GetCurrentContext implements abi.Engine.
func (e *Engine) GetCurrentContext(currentContext *abi.ContextRef) abi.ErrorCode {
	if currentContext == nil {
		return abi.ErrorNullArgument
	}
	var ctx C.JsContextRef
	code := status(C.JsGetCurrentContext(&ctx))
	if code == abi.NoError {
		*currentContext = abi.ContextRef(uintptr(unsafe.Pointer(ctx)))
	}
	return code
}

// Idle implements abi.Engine.
func (e *Engine) Idle(nextIdleTick *uint32) abi.ErrorCode {
	var tick C.uint
	code := status(C.JsIdle(&tick))
	if code == abi.NoError && nextIdleTick != nil {
		*nextIdleTick = uint32(tick)
	}
	return code
}

// CreateExternalArrayBuffer implements abi.Engine. data must be C memory.
func (e *Engine) CreateExternalArrayBuffer(data []byte, finalize abi.FinalizeCallback, callbackState uintptr, result *abi.ValueRef) abi.ErrorCode {
	if len(data) > math.MaxUint32 {
		return abi.ErrorInvalidArgument
	}
	var token uintptr
	if finalize != nil {
		token = nextToken.Add(1)
		finalizers.Store(token, &hostFinalizer{fn: finalize, state: callbackState, runtime: currentRuntime()})
	}
	code := out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.createExternalArrayBuffer(unsafe.Pointer(unsafe.SliceData(data)), C.uint(len(data)), C.uintptr_t(token), ref)
	})
	if code != abi.NoError && token != 0 {
		finalizers.Delete(token)
	}
	return code
}

// Run implements abi.Engine.
func (e *Engine) Run(script abi.ValueRef, sourceContext abi.SourceContext, sourceURL abi.ValueRef, parseAttributes abi.ParseScriptAttributes, result *abi.ValueRef) abi.ErrorCode {
	return out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsRun(toRef(script), C.JsSourceContext(sourceContext), toRef(sourceURL), C.JsParseScriptAttributes(parseAttributes), ref)
	})
}

// HasException implements abi.Engine.
func (e *Engine) HasException(hasException *bool) abi.ErrorCode {
	if hasException == nil {
		return abi.ErrorNullArgument
	}
	var has C.bool
	code := status(C.JsHasException(&has))
	*hasException = bool(has)
	return code
}

// GetAndClearException implements abi.Engine.
func (e *Engine) GetAndClearException(exception *abi.ValueRef) abi.ErrorCode {
	return out(exception, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsGetAndClearException(ref)
	})
}

// SetException implements abi.Engine.
func (e *Engine) SetException(exception abi.ValueRef) abi.ErrorCode {
	return status(C.JsSetException(toRef(exception)))
}

// CreateError implements abi.Engine.
func (e *Engine) CreateError(message abi.ValueRef, errorValue *abi.ValueRef) abi.ErrorCode {
	return out(errorValue, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsCreateError(toRef(message), ref)
	})
}

// AddRef implements abi.Engine.
func (e *Engine) AddRef(ref abi.ValueRef, count *uint32) abi.ErrorCode {
	var n C.uint
	code := status(C.JsAddRef(C.JsRef(toRef(ref)), &n))
	if count != nil {
		*count = uint32(n)
	}
	return code
}

// Release implements abi.Engine.
func (e *Engine) Release(ref abi.ValueRef, count *uint32) abi.ErrorCode {
	var n C.uint
	code := status(C.JsRelease(C.JsRef(toRef(ref)), &n))
	if count != nil {
		*count = uint32(n)
	}
	return code
}
