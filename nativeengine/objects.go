//go:build chakracore && cgo

package nativeengine

/*
#include <stdbool.h>
#include <stdint.h>
#include <ChakraCore.h>

JsErrorCode createFunction(uintptr_t token, JsValueRef *function);
*/
import "C"
import (
	"math"
	"unsafe"

	"github.com/buke/chakracore-go/abi"
)

// CreateObject implements abi.Engine.
func (e *Engine) CreateObject(object *abi.ValueRef) abi.ErrorCode {
	return out(object, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsCreateObject(ref)
	})
}

// GetGlobalObject implements abi.Engine.
func (e *Engine) GetGlobalObject(globalObject *abi.ValueRef) abi.ErrorCode {
	return out(globalObject, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsGetGlobalObject(ref)
	})
}

// ObjectHasProperty implements abi.Engine.
func (e *Engine) ObjectHasProperty(object, key abi.ValueRef, hasProperty *bool) abi.ErrorCode {
	if hasProperty == nil {
		return abi.ErrorNullArgument
	}
	var b C.bool
	code := status(C.JsObjectHasProperty(toRef(object), toRef(key), &b))
	*hasProperty = bool(b)
	return code
}

// ObjectGetProperty implements abi.Engine.
func (e *Engine) ObjectGetProperty(object, key abi.ValueRef, value *abi.ValueRef) abi.ErrorCode {
	return out(value, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsObjectGetProperty(toRef(object), toRef(key), ref)
	})
}

// ObjectSetProperty implements abi.Engine.
func (e *Engine) ObjectSetProperty(object, key, value abi.ValueRef, useStrictRules bool) abi.ErrorCode {
	return status(C.JsObjectSetProperty(toRef(object), toRef(key), toRef(value), C.bool(useStrictRules)))
}

// ObjectDeleteProperty implements abi.Engine.
func (e *Engine) ObjectDeleteProperty(object, key abi.ValueRef, useStrictRules bool, result *abi.ValueRef) abi.ErrorCode {
	return out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsObjectDeleteProperty(toRef(object), toRef(key), C.bool(useStrictRules), ref)
	})
}

// CreateFunction implements abi.Engine. The callback is registered under a token that the
// engine stores as callback state; the entry lives until the runtime is disposed.
func (e *Engine) CreateFunction(nativeFunction abi.NativeFunction, callbackState uintptr, function *abi.ValueRef) abi.ErrorCode {
	if nativeFunction == nil {
		return abi.ErrorNullArgument
	}
	token := nextToken.Add(1)
	functions.Store(token, &hostFunction{fn: nativeFunction, state: callbackState, runtime: currentRuntime()})
	code := out(function, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.createFunction(C.uintptr_t(token), ref)
	})
	if code != abi.NoError {
		functions.Delete(token)
	}
	return code
}

// CallFunction implements abi.Engine.
func (e *Engine) CallFunction(function abi.ValueRef, arguments []abi.ValueRef, result *abi.ValueRef) abi.ErrorCode {
	if len(arguments) == 0 || len(arguments) > math.MaxUint16 {
		return abi.ErrorInvalidArgument
	}
	return out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsCallFunction(toRef(function), argv(arguments), C.ushort(len(arguments)), ref)
	})
}

// ConstructObject implements abi.Engine.
func (e *Engine) ConstructObject(function abi.ValueRef, arguments []abi.ValueRef, object *abi.ValueRef) abi.ErrorCode {
	if len(arguments) == 0 || len(arguments) > math.MaxUint16 {
		return abi.ErrorInvalidArgument
	}
	return out(object, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsConstructObject(toRef(function), argv(arguments), C.ushort(len(arguments)), ref)
	})
}

// argv reinterprets the handles as a JsValueRef array; both are pointer-sized integers
// from the engine's point of view.
func argv(arguments []abi.ValueRef) *C.JsValueRef {
	return (*C.JsValueRef)(unsafe.Pointer(unsafe.SliceData(arguments)))
}
