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

// empty backs zero-length strings; JsCreateString rejects a NULL content pointer.
var empty = [1]byte{}

// GetUndefinedValue implements abi.Engine.
func (e *Engine) GetUndefinedValue(undefinedValue *abi.ValueRef) abi.ErrorCode {
	return out(undefinedValue, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsGetUndefinedValue(ref)
	})
}

// GetNullValue implements abi.Engine.
func (e *Engine) GetNullValue(nullValue *abi.ValueRef) abi.ErrorCode {
	return out(nullValue, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsGetNullValue(ref)
	})
}

// BoolToBoolean implements abi.Engine.
func (e *Engine) BoolToBoolean(value bool, booleanValue *abi.ValueRef) abi.ErrorCode {
	return out(booleanValue, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsBoolToBoolean(C.bool(value), ref)
	})
}

// BooleanToBool implements abi.Engine.
func (e *Engine) BooleanToBool(value abi.ValueRef, boolValue *bool) abi.ErrorCode {
	if boolValue == nil {
		return abi.ErrorNullArgument
	}
	var b C.bool
	code := status(C.JsBooleanToBool(toRef(value), &b))
	*boolValue = bool(b)
	return code
}

// IntToNumber implements abi.Engine.
func (e *Engine) IntToNumber(intValue int32, value *abi.ValueRef) abi.ErrorCode {
	return out(value, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsIntToNumber(C.int(intValue), ref)
	})
}

// DoubleToNumber implements abi.Engine.
func (e *Engine) DoubleToNumber(doubleValue float64, value *abi.ValueRef) abi.ErrorCode {
	return out(value, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsDoubleToNumber(C.double(doubleValue), ref)
	})
}

// NumberToInt implements abi.Engine.
func (e *Engine) NumberToInt(value abi.ValueRef, intValue *int32) abi.ErrorCode {
	if intValue == nil {
		return abi.ErrorNullArgument
	}
	var i C.int
	code := status(C.JsNumberToInt(toRef(value), &i))
	*intValue = int32(i)
	return code
}

// NumberToDouble implements abi.Engine.
func (e *Engine) NumberToDouble(value abi.ValueRef, doubleValue *float64) abi.ErrorCode {
	if doubleValue == nil {
		return abi.ErrorNullArgument
	}
	var d C.double
	code := status(C.JsNumberToDouble(toRef(value), &d))
	*doubleValue = float64(d)
	return code
}

// CreateString implements abi.Engine.
func (e *Engine) CreateString(content []byte, value *abi.ValueRef) abi.ErrorCode {
	p := unsafe.Pointer(&empty[0])
	if len(content) > 0 {
		p = unsafe.Pointer(unsafe.SliceData(content))
	}
	return out(value, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsCreateString((*C.char)(p), C.size_t(len(content)), ref)
	})
}

// CopyString implements abi.Engine.
func (e *Engine) CopyString(value abi.ValueRef, buffer []byte, length *int) abi.ErrorCode {
	if length == nil {
		return abi.ErrorNullArgument
	}
	var p *C.char
	if buffer != nil {
		p = (*C.char)(unsafe.Pointer(unsafe.SliceData(buffer)))
	}
	var n C.size_t
	code := status(C.JsCopyString(toRef(value), p, C.size_t(len(buffer)), &n))
	*length = int(n)
	return code
}

// GetStringLength implements abi.Engine.
func (e *Engine) GetStringLength(value abi.ValueRef, length *int) abi.ErrorCode {
	if length == nil {
		return abi.ErrorNullArgument
	}
	var n C.int
	code := status(C.JsGetStringLength(toRef(value), &n))
	*length = int(n)
	return code
}

// ConvertValueToBoolean implements abi.Engine.
func (e *Engine) ConvertValueToBoolean(value abi.ValueRef, result *abi.ValueRef) abi.ErrorCode {
	return out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsConvertValueToBoolean(toRef(value), ref)
	})
}

// ConvertValueToNumber implements abi.Engine.
func (e *Engine) ConvertValueToNumber(value abi.ValueRef, result *abi.ValueRef) abi.ErrorCode {
	return out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsConvertValueToNumber(toRef(value), ref)
	})
}

// ConvertValueToString implements abi.Engine.
func (e *Engine) ConvertValueToString(value abi.ValueRef, result *abi.ValueRef) abi.ErrorCode {
	return out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsConvertValueToString(toRef(value), ref)
	})
}

// ConvertValueToObject implements abi.Engine.
func (e *Engine) ConvertValueToObject(value abi.ValueRef, result *abi.ValueRef) abi.ErrorCode {
	return out(result, func(ref *C.JsValueRef) C.JsErrorCode {
		return C.JsConvertValueToObject(toRef(value), ref)
	})
}

// GetValueType implements abi.Engine.
func (e *Engine) GetValueType(value abi.ValueRef, valueType *abi.ValueType) abi.ErrorCode {
	if valueType == nil {
		return abi.ErrorNullArgument
	}
	var t C.JsValueType
	code := status(C.JsGetValueType(toRef(value), &t))
	*valueType = abi.ValueType(t)
	return code
}

// Equals implements abi.Engine.
func (e *Engine) Equals(object1, object2 abi.ValueRef, result *bool) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	var b C.bool
	code := status(C.JsEquals(toRef(object1), toRef(object2), &b))
	*result = bool(b)
	return code
}

// StrictEquals implements abi.Engine.
func (e *Engine) StrictEquals(object1, object2 abi.ValueRef, result *bool) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	var b C.bool
	code := status(C.JsStrictEquals(toRef(object1), toRef(object2), &b))
	*result = bool(b)
	return code
}
