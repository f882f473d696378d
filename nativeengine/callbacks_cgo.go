//go:build chakracore && cgo

package nativeengine

/*
#include <stdbool.h>
#include <stdint.h>
#include <ChakraCore.h>

// exports (bridge.go)
JsValueRef goNativeFunction(JsValueRef callee, bool isConstructCall, JsValueRef *arguments, unsigned short argumentCount, uintptr_t callbackState);
void goFinalize(uintptr_t callbackState);

// Gateway functions
JsValueRef CHAKRA_CALLBACK goNativeFunction_cgo(JsValueRef callee, bool isConstructCall, JsValueRef *arguments, unsigned short argumentCount, void *callbackState) {
	return goNativeFunction(callee, isConstructCall, arguments, argumentCount, (uintptr_t)callbackState);
}
void CHAKRA_CALLBACK goFinalize_cgo(void *callbackState) {
	goFinalize((uintptr_t)callbackState);
}

// Callback state is a registry token, never a Go pointer.
JsErrorCode createFunction(uintptr_t token, JsValueRef *function) {
	return JsCreateFunction(goNativeFunction_cgo, (void *)token, function);
}
JsErrorCode createExternalArrayBuffer(void *data, unsigned int byteLength, uintptr_t token, JsValueRef *result) {
	if (token == 0) {
		return JsCreateExternalArrayBuffer(data, byteLength, NULL, NULL, result);
	}
	return JsCreateExternalArrayBuffer(data, byteLength, goFinalize_cgo, (void *)token, result);
}
*/
import "C"
