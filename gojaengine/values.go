package gojaengine

import (
	"math"
	"reflect"

	"github.com/dop251/goja"
	"github.com/pkg/errors"

	"github.com/buke/chakracore-go/abi"
)

var (
	typeString      = reflect.TypeOf("")
	typeBool        = reflect.TypeOf(false)
	typeProxy       = reflect.TypeOf(goja.Proxy{})
	typeArrayBuffer = reflect.TypeOf(goja.ArrayBuffer{})
)

// newRefLocked returns a handle for v in c. Objects keep a single handle per context.
// undefined and null are interned and never dropped.
func (e *Engine) newRefLocked(c *jsContext, v goja.Value) abi.ValueRef {
	switch {
	case v == nil || goja.IsUndefined(v):
		if c.undefined == abi.InvalidReference {
			c.undefined = e.storeLocked(c, goja.Undefined(), true)
		}
		return c.undefined
	case goja.IsNull(v):
		if c.null == abi.InvalidReference {
			c.null = e.storeLocked(c, goja.Null(), true)
		}
		return c.null
	}
	if obj, ok := v.(*goja.Object); ok {
		if ref, ok := c.objects[obj]; ok {
			return ref
		}
		ref := e.storeLocked(c, v, false)
		c.objects[obj] = ref
		return ref
	}
	return e.storeLocked(c, v, false)
}

// pinRefLocked returns a handle for a fresh object that lives until the runtime is
// disposed, even when minted inside a callback scope.
func (e *Engine) pinRefLocked(c *jsContext, obj *goja.Object) abi.ValueRef {
	ref := e.storeLocked(c, obj, true)
	c.objects[obj] = ref
	return ref
}

// storeLocked adds v to the handle table. Unpinned handles minted while a native callback
// runs belong to that callback's scope; the rest live until the runtime is disposed.
func (e *Engine) storeLocked(c *jsContext, v goja.Value, pinned bool) abi.ValueRef {
	ref := abi.ValueRef(e.nextRefLocked())
	e.values[ref] = &handle{ctx: c, value: v}
	rt := c.rt
	if n := len(rt.scopes); n > 0 && !pinned {
		rt.scopes[n-1] = append(rt.scopes[n-1], ref)
	} else {
		rt.values = append(rt.values, ref)
	}
	return ref
}

// openScopeLocked starts a handle scope for one native callback.
func (e *Engine) openScopeLocked(rt *jsRuntime) {
	rt.scopes = append(rt.scopes, nil)
}

// closeScopeLocked drops the handles minted since the matching openScopeLocked. Handles
// the host added a reference to move to the runtime's long-lived set.
func (e *Engine) closeScopeLocked(rt *jsRuntime) {
	n := len(rt.scopes) - 1
	refs := rt.scopes[n]
	rt.scopes[n] = nil
	rt.scopes = rt.scopes[:n]

	for _, ref := range refs {
		h := e.values[ref]
		if h == nil {
			continue
		}
		if h.refs > 0 {
			rt.values = append(rt.values, ref)
			continue
		}
		delete(e.values, ref)
		if obj, ok := h.value.(*goja.Object); ok && h.ctx.objects[obj] == ref {
			delete(h.ctx.objects, obj)
		}
	}
}

// Handles reports the number of live value handles across all runtimes.
func (e *Engine) Handles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.values)
}

func (e *Engine) newRef(c *jsContext, v goja.Value) abi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newRefLocked(c, v)
}

// resolveLocked looks up ref for use in c.
func (e *Engine) resolveLocked(c *jsContext, ref abi.ValueRef) (goja.Value, abi.ErrorCode) {
	h := e.values[ref]
	if h == nil {
		return nil, abi.ErrorInvalidArgument
	}
	if h.ctx.rt != c.rt {
		return nil, abi.ErrorWrongRuntime
	}
	if h.ctx != c {
		if _, ok := h.value.(*goja.Object); ok {
			return nil, abi.ErrorInvalidArgument
		}
	}
	return h.value, abi.NoError
}

func (e *Engine) resolve(c *jsContext, refs ...abi.ValueRef) ([]goja.Value, abi.ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	values := make([]goja.Value, len(refs))
	for i, ref := range refs {
		v, code := e.resolveLocked(c, ref)
		if code != abi.NoError {
			return nil, code
		}
		values[i] = v
	}
	return values, abi.NoError
}

// fail records err as the runtime's pending exception and maps it to a status.
func (e *Engine) fail(c *jsContext, err error) abi.ErrorCode {
	var (
		exception   goja.Value
		code        = abi.ErrorScriptException
		interrupted *goja.InterruptedError
		thrown      *goja.Exception
	)
	switch {
	case errors.As(err, &interrupted):
		c.vm.ClearInterrupt()
		code = abi.ErrorScriptTerminated
		if interrupted.Value() == errEvalDisabled {
			code = abi.ErrorScriptEvalDisabled
		}
		exception = c.newError(c.errorCtor, code.String())
	case errors.As(err, &thrown) && thrown.Value() != nil:
		exception = thrown.Value()
	default:
		exception = c.vm.NewGoError(err)
	}

	e.mu.Lock()
	c.rt.exception = exception
	e.mu.Unlock()
	return code
}

// primitiveType classifies non-object values.
func primitiveType(v goja.Value) (abi.ValueType, bool) {
	switch {
	case v == nil || goja.IsUndefined(v):
		return abi.Undefined, true
	case goja.IsNull(v):
		return abi.Null, true
	}
	switch v.(type) {
	case *goja.Object:
		return 0, false
	case *goja.Symbol:
		return abi.Symbol, true
	}
	switch v.ExportType() {
	case typeString:
		return abi.String, true
	case typeBool:
		return abi.Boolean, true
	}
	return abi.Number, true
}

// valueType reads the type tag of v through goja's Go API. No script runs, so proxy
// traps and user getters cannot observe or fail the query.
func (c *jsContext) valueType(v goja.Value) abi.ValueType {
	if t, ok := primitiveType(v); ok {
		return t
	}
	obj := v.(*goja.Object)
	if _, ok := goja.AssertFunction(obj); ok {
		return abi.Function
	}
	typ := obj.ExportType()
	if typ == typeProxy {
		return abi.Object
	}
	switch obj.ClassName() {
	case "Error":
		return abi.Error
	case "Array":
		return abi.Array
	}
	switch {
	case typ == typeArrayBuffer:
		return abi.ArrayBuffer
	case typ != nil && typ.Kind() == reflect.Slice && typ.Elem().Kind() != reflect.Interface:
		return abi.TypedArray
	case c.isDataView(obj):
		return abi.DataView
	}
	return abi.Object
}

// isDataView walks the prototype chain of obj looking for DataView.prototype. The walk
// stops at a proxy, whose getPrototypeOf trap would run script.
func (c *jsContext) isDataView(obj *goja.Object) bool {
	if c.dataViewProto == nil {
		return false
	}
	for p := obj.Prototype(); p != nil; p = p.Prototype() {
		if p == c.dataViewProto {
			return true
		}
		if p.ExportType() == typeProxy {
			return false
		}
	}
	return false
}

// typed resolves ref and checks it has type want.
func (e *Engine) typed(ref abi.ValueRef, want abi.ValueType) (*jsContext, goja.Value, abi.ErrorCode) {
	c, code := e.enter()
	if code != abi.NoError {
		return nil, nil, code
	}
	vs, code := e.resolve(c, ref)
	if code != abi.NoError {
		return nil, nil, code
	}
	if t, _ := primitiveType(vs[0]); t != want {
		return nil, nil, abi.ErrorInvalidArgument
	}
	return c, vs[0], abi.NoError
}

// produce stores v as the output of an entry point.
func (e *Engine) produce(c *jsContext, v goja.Value, out *abi.ValueRef) abi.ErrorCode {
	*out = e.newRef(c, v)
	return abi.NoError
}

// GetUndefinedValue implements abi.Engine.
func (e *Engine) GetUndefinedValue(undefinedValue *abi.ValueRef) abi.ErrorCode {
	if undefinedValue == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, goja.Undefined(), undefinedValue)
}

// GetNullValue implements abi.Engine.
func (e *Engine) GetNullValue(nullValue *abi.ValueRef) abi.ErrorCode {
	if nullValue == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, goja.Null(), nullValue)
}

// BoolToBoolean implements abi.Engine.
func (e *Engine) BoolToBoolean(value bool, booleanValue *abi.ValueRef) abi.ErrorCode {
	if booleanValue == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, c.vm.ToValue(value), booleanValue)
}

// BooleanToBool implements abi.Engine.
func (e *Engine) BooleanToBool(value abi.ValueRef, boolValue *bool) abi.ErrorCode {
	if boolValue == nil {
		return abi.ErrorNullArgument
	}
	_, v, code := e.typed(value, abi.Boolean)
	if code != abi.NoError {
		return code
	}
	*boolValue = v.ToBoolean()
	return abi.NoError
}

// IntToNumber implements abi.Engine.
func (e *Engine) IntToNumber(intValue int32, value *abi.ValueRef) abi.ErrorCode {
	if value == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, c.vm.ToValue(intValue), value)
}

// DoubleToNumber implements abi.Engine.
func (e *Engine) DoubleToNumber(doubleValue float64, value *abi.ValueRef) abi.ErrorCode {
	if value == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, c.vm.ToValue(doubleValue), value)
}

// NumberToInt implements abi.Engine with ECMAScript ToInt32 semantics: the value is
// truncated and wrapped modulo 2^32; NaN and infinities become 0.
func (e *Engine) NumberToInt(value abi.ValueRef, intValue *int32) abi.ErrorCode {
	if intValue == nil {
		return abi.ErrorNullArgument
	}
	_, v, code := e.typed(value, abi.Number)
	if code != abi.NoError {
		return code
	}
	*intValue = toInt32(v.ToFloat())
	return abi.NoError
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Mod(math.Trunc(f), 1<<32))))
}

// NumberToDouble implements abi.Engine.
func (e *Engine) NumberToDouble(value abi.ValueRef, doubleValue *float64) abi.ErrorCode {
	if doubleValue == nil {
		return abi.ErrorNullArgument
	}
	_, v, code := e.typed(value, abi.Number)
	if code != abi.NoError {
		return code
	}
	*doubleValue = v.ToFloat()
	return abi.NoError
}

// CreateString implements abi.Engine. content is UTF-8; invalid sequences become U+FFFD.
func (e *Engine) CreateString(content []byte, value *abi.ValueRef) abi.ErrorCode {
	if value == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	return e.produce(c, c.vm.ToValue(string(content)), value)
}

// CopyString implements abi.Engine. With a nil buffer it only reports the UTF-8 length.
// No terminator is written.
func (e *Engine) CopyString(value abi.ValueRef, buffer []byte, length *int) abi.ErrorCode {
	if length == nil {
		return abi.ErrorNullArgument
	}
	_, v, code := e.typed(value, abi.String)
	if code != abi.NoError {
		return code
	}
	s := v.String()
	if buffer == nil {
		*length = len(s)
		return abi.NoError
	}
	*length = copy(buffer, s)
	return abi.NoError
}

// GetStringLength implements abi.Engine; the length is in UTF-16 code units.
func (e *Engine) GetStringLength(value abi.ValueRef, length *int) abi.ErrorCode {
	if length == nil {
		return abi.ErrorNullArgument
	}
	c, v, code := e.typed(value, abi.String)
	if code != abi.NoError {
		return code
	}
	n, err := c.fn.get(goja.Undefined(), v, c.vm.ToValue("length"))
	if err != nil {
		return e.fail(c, err)
	}
	*length = int(n.ToInteger())
	return abi.NoError
}

// convert runs a conversion helper on value.
func (e *Engine) convert(value abi.ValueRef, helper func(*jsContext) goja.Callable, out *abi.ValueRef) abi.ErrorCode {
	if out == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	vs, code := e.resolve(c, value)
	if code != abi.NoError {
		return code
	}
	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	r, err := helper(c)(goja.Undefined(), vs[0])
	if err != nil {
		return e.fail(c, err)
	}
	return e.produce(c, r, out)
}

// ConvertValueToBoolean implements abi.Engine.
func (e *Engine) ConvertValueToBoolean(value abi.ValueRef, booleanValue *abi.ValueRef) abi.ErrorCode {
	return e.convert(value, func(c *jsContext) goja.Callable { return c.fn.bool }, booleanValue)
}

// ConvertValueToNumber implements abi.Engine. Objects run valueOf/toString.
func (e *Engine) ConvertValueToNumber(value abi.ValueRef, numberValue *abi.ValueRef) abi.ErrorCode {
	return e.convert(value, func(c *jsContext) goja.Callable { return c.fn.num }, numberValue)
}

// ConvertValueToString implements abi.Engine.
func (e *Engine) ConvertValueToString(value abi.ValueRef, stringValue *abi.ValueRef) abi.ErrorCode {
	return e.convert(value, func(c *jsContext) goja.Callable { return c.fn.str }, stringValue)
}

// ConvertValueToObject implements abi.Engine; null and undefined throw a TypeError.
func (e *Engine) ConvertValueToObject(value abi.ValueRef, object *abi.ValueRef) abi.ErrorCode {
	return e.convert(value, func(c *jsContext) goja.Callable { return c.fn.obj }, object)
}

// GetValueType implements abi.Engine.
func (e *Engine) GetValueType(value abi.ValueRef, valueType *abi.ValueType) abi.ErrorCode {
	if valueType == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	vs, code := e.resolve(c, value)
	if code != abi.NoError {
		return code
	}
	*valueType = c.valueType(vs[0])
	return abi.NoError
}

// Equals implements abi.Engine with abstract (==) equality.
func (e *Engine) Equals(object1, object2 abi.ValueRef, result *bool) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	vs, code := e.resolve(c, object1, object2)
	if code != abi.NoError {
		return code
	}
	e.track(c.rt, 1)
	defer e.track(c.rt, -1)
	r, err := c.fn.equals(goja.Undefined(), vs[0], vs[1])
	if err != nil {
		return e.fail(c, err)
	}
	*result = r.ToBoolean()
	return abi.NoError
}

// StrictEquals implements abi.Engine.
func (e *Engine) StrictEquals(object1, object2 abi.ValueRef, result *bool) abi.ErrorCode {
	if result == nil {
		return abi.ErrorNullArgument
	}
	c, code := e.enter()
	if code != abi.NoError {
		return code
	}
	vs, code := e.resolve(c, object1, object2)
	if code != abi.NoError {
		return code
	}
	*result = vs[0].StrictEquals(vs[1])
	return abi.NoError
}

// AddRef implements abi.Engine. count may be nil. A referenced handle outlives the
// callback scope it was minted in.
func (e *Engine) AddRef(ref abi.ValueRef, count *uint32) abi.ErrorCode {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.values[ref]
	if h == nil {
		return abi.ErrorInvalidArgument
	}
	h.refs++
	if count != nil {
		*count = h.refs
	}
	return abi.NoError
}

// Release implements abi.Engine. count may be nil. A handle whose count drops to zero
// stays valid until its runtime is disposed; only callback-scoped handles are dropped
// early, when their callback returns.
func (e *Engine) Release(ref abi.ValueRef, count *uint32) abi.ErrorCode {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.values[ref]
	if h == nil || h.refs == 0 {
		return abi.ErrorInvalidArgument
	}
	h.refs--
	if count != nil {
		*count = h.refs
	}
	return abi.NoError
}
