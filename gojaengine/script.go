package gojaengine

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/dop251/goja"

	"github.com/buke/chakracore-go/abi"
)

// CreateExternalArrayBuffer implements abi.Engine. data is used in place; finalize runs
// with callbackState when the runtime is disposed.
func (e *Engine) CreateExternalArrayBuffer(data []byte, finalize abi.FinalizeCallback, callbackState uintptr, result *abi.ValueRef) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}

	buf := c.vm.NewArrayBuffer(data)
	e.mu.Lock()
	defer e.mu.Unlock()
	if finalize != nil {
		c.rt.finalizers = append(c.rt.finalizers, finalizer{fn: finalize, state: callbackState})
	}
	*result = e.newRefLocked(c, c.vm.ToValue(buf))
	return abi.NoError
}

// Run implements abi.Engine. script is an ArrayBuffer holding the source, UTF-8 unless
// attributes say UTF-16; sourceURL names it in stack traces. A compile error yields
// ErrorScriptCompile and a thrown exception ErrorScriptException, both leaving the runtime in
// an exception state.
func (e *Engine) Run(script abi.ValueRef, sourceContext abi.SourceContext, sourceURL abi.ValueRef, attributes abi.ParseScriptAttributes, result *abi.ValueRef) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	vs, code := e.resolve(c, script, sourceURL)
	if code != abi.NoError {
		return code
	}
	obj, ok := vs[0].(*goja.Object)
	if !ok {
		return abi.ErrorInvalidArgument
	}
	buf, ok := obj.Export().(goja.ArrayBuffer)
	if !ok {
		return abi.ErrorInvalidArgument
	}
	if t, _ := primitiveType(vs[1]); t != abi.String {
		return abi.ErrorInvalidArgument
	}

	source := decodeSource(buf.Bytes(), attributes)
	prg, err := goja.Compile(vs[1].String(), source, false)
	if err != nil {
		exception := c.newError(c.syntaxErrorCtor, err.Error())
		e.mu.Lock()
		c.rt.exception = exception
		e.mu.Unlock()
		return abi.ErrorScriptCompile
	}

	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	v, err := c.vm.RunProgram(prg)
	if err != nil {
		return e.fail(c, err)
	}
	return e.produce(c, v, result)
}

func decodeSource(b []byte, attributes abi.ParseScriptAttributes) string {
	if attributes&abi.ParseScriptAttributeArrayBufferIsUtf16Encoded == 0 {
		return string(b)
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units))
}

// HasException implements abi.Engine.
func (e *Engine) HasException(hasException *bool) abi.ErrorCode {
	if hasException == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.currentContext()
	if code != abi.NoError {
		return code
	}
	e.mu.Lock()
	*hasException = c.rt.exception != nil
	e.mu.Unlock()
	return abi.NoError
}

// GetAndClearException implements abi.Engine. It fails with ErrorInvalidArgument when no
// exception is pending.
func (e *Engine) GetAndClearException(exception *abi.ValueRef) abi.ErrorCode {
	if exception == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.currentContext()
	if code != abi.NoError {
		return code
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if c.rt.exception == nil {
		return abi.ErrorInvalidArgument
	}
	*exception = e.newRefLocked(c, c.rt.exception)
	c.rt.exception = nil
	return abi.NoError
}

// SetException implements abi.Engine. Inside a native callback the exception is thrown
// when the callback returns.
func (e *Engine) SetException(exception abi.ValueRef) abi.ErrorCode {
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	v, code := e.resolveLocked(c, exception)
	if code != abi.NoError {
		return code
	}
	c.rt.exception = v
	return abi.NoError
}

// CreateError implements abi.Engine. message must be a string.
func (e *Engine) CreateError(message abi.ValueRef, errorValue *abi.ValueRef) abi.ErrorCode {
	if errorValue == nil {
		return abi.ErrorNullArgument
	}
	c, v, code := e.typed(message, abi.String)
	if code != abi.NoError {
		return code
	}
	return e.produce(c, c.newError(c.errorCtor, v.String()), errorValue)
}
