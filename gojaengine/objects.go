package gojaengine

import (
	"github.com/dop251/goja"

	"github.com/buke/chakracore-go/abi"
)

// CreateObject implements abi.Engine.
func (e *Engine) CreateObject(object *abi.ValueRef) abi.ErrorCode {
	if object == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, c.vm.NewObject(), object)
}

// GetGlobalObject implements abi.Engine.
func (e *Engine) GetGlobalObject(globalObject *abi.ValueRef) abi.ErrorCode {
	if globalObject == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, c.vm.GlobalObject(), globalObject)
}

// property resolves an object and a key. Keys must be strings or symbols.
func (e *Engine) property(object, key abi.ValueRef, extra ...abi.ValueRef) (*jsContext, []goja.Value, abi.ErrorCode) {
	c, code := e.enter()
	if code != abi.NoError {
		return nil, nil, code
	}
	vs, code := e.resolve(c, append([]abi.ValueRef{object, key}, extra...)...)
	if code != abi.NoError {
		return nil, nil, code
	}
	if _, ok := vs[0].(*goja.Object); !ok {
		return nil, nil, abi.ErrorArgumentNotObject
	}
	if t, _ := primitiveType(vs[1]); t != abi.String && t != abi.Symbol {
		return nil, nil, abi.ErrorInvalidArgument
	}
	return c, vs, abi.NoError
}

// ObjectHasProperty implements abi.Engine, including inherited properties.
func (e *Engine) ObjectHasProperty(object, key abi.ValueRef, hasProperty *bool) abi.ErrorCode {
	if hasProperty == nil {
		return abi.ErrorNullArgument
	}
	c, vs, code := e.property(object, key)
	if code != abi.NoError {
		return code
	}
	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	r, err := c.fn.has(goja.Undefined(), vs...)
	if err != nil {
		return e.fail(c, err)
	}
	*hasProperty = r.ToBoolean()
	return abi.NoError
}

// ObjectGetProperty implements abi.Engine. Getters run.
func (e *Engine) ObjectGetProperty(object, key abi.ValueRef, value *abi.ValueRef) abi.ErrorCode {
	if value == nil {
		return abi.ErrorNullArgument
	}
	c, vs, code := e.property(object, key)
	if code != abi.NoError {
		return code
	}
	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	r, err := c.fn.get(goja.Undefined(), vs...)
	if err != nil {
		return e.fail(c, err)
	}
	return e.produce(c, r, value)
}

// ObjectSetProperty implements abi.Engine. With useStrictRules a rejected write throws a
// TypeError instead of failing silently.
func (e *Engine) ObjectSetProperty(object, key, value abi.ValueRef, useStrictRules bool) abi.ErrorCode {
	c, vs, code := e.property(object, key, value)
	if code != abi.NoError {
		return code
	}
	set := c.fn.set
	if useStrictRules {
		set = c.fn.setStrict
	}
	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	if _, err := set(goja.Undefined(), vs...); err != nil {
		return e.fail(c, err)
	}
	return abi.NoError
}

// ObjectDeleteProperty implements abi.Engine. result receives the Boolean outcome of the
// delete operator.
func (e *Engine) ObjectDeleteProperty(object, key abi.ValueRef, useStrictRules bool, result *abi.ValueRef) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	c, vs, code := e.property(object, key)
	if code != abi.NoError {
		return code
	}
	del := c.fn.del
	if useStrictRules {
		del = c.fn.delStrict
	}
	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	r, err := del(goja.Undefined(), vs...)
	if err != nil {
		return e.fail(c, err)
	}
	return e.produce(c, r, result)
}

// CallFunction implements abi.Engine. arguments[0] is the receiver and must be present.
func (e *Engine) CallFunction(function abi.ValueRef, arguments []abi.ValueRef, result *abi.ValueRef) abi.ErrorCode {
	c, fn, args, code := e.callable(function, arguments, result)
	if code != abi.NoError {
		return code
	}
	callable, _ := goja.AssertFunction(fn)

	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	r, err := callable(args[0], args[1:]...)
	if err != nil {
		return e.fail(c, err)
	}
	return e.produce(c, r, result)
}

// ConstructObject implements abi.Engine. arguments[0] is ignored; the new object is the
// receiver.
func (e *Engine) ConstructObject(function abi.ValueRef, arguments []abi.ValueRef, object *abi.ValueRef) abi.ErrorCode {
	c, fn, args, code := e.callable(function, arguments, object)
	if code != abi.NoError {
		return code
	}

	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	r, err := c.vm.New(fn, args[1:]...)
	if err != nil {
		return e.fail(c, err)
	}
	return e.produce(c, r, object)
}

func (e *Engine) callable(function abi.ValueRef, arguments []abi.ValueRef, out *abi.ValueRef) (*jsContext, goja.Value, []goja.Value, abi.ErrorCode) {
	if out == nil {
		return nil, nil, nil, abi.ErrorNullArgument
	}
	if len(arguments) == 0 {
		return nil, nil, nil, abi.ErrorInvalidArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return nil, nil, nil, code
	}
	vs, code := e.resolve(c, append([]abi.ValueRef{function}, arguments...)...)
	if code != abi.NoError {
		return nil, nil, nil, code
	}
	if _, ok := goja.AssertFunction(vs[0]); !ok {
		return nil, nil, nil, abi.ErrorInvalidArgument
	}
	return c, vs[0], vs[1:], abi.NoError
}
