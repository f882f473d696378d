//go:build chakracore && cgo

package nativeengine

/*
#include <stdbool.h>
#include <stdint.h>
#include <ChakraCore.h>
*/
import "C"
import (
	"unsafe"

	"github.com/buke/chakracore-go/abi"
)

//export goNativeFunction
func goNativeFunction(callee C.JsValueRef, isConstructCall C.bool, arguments *C.JsValueRef, argumentCount C.ushort, callbackState C.uintptr_t) C.JsValueRef {
	fn, ok := functions.Load(uintptr(callbackState))
	if !ok {
		return nil
	}
	entry := fn.(*hostFunction)

	// JsValueRef and abi.ValueRef have the same size; the engine owns the array
	args := unsafe.Slice((*abi.ValueRef)(unsafe.Pointer(arguments)), int(argumentCount))
	ret := entry.fn(fromRef(callee), bool(isConstructCall), args, uint16(argumentCount), entry.state)
	return toRef(ret)
}

//export goFinalize
func goFinalize(callbackState C.uintptr_t) {
	f, ok := finalizers.LoadAndDelete(uintptr(callbackState))
	if !ok {
		return
	}
	entry := f.(*hostFinalizer)
	entry.fn(entry.state)
}
