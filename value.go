package chakracore

import (
	"github.com/pkg/errors"

	"github.com/buke/chakracore-go/abi"
)

// ValueKind is the engine type tag of a value.
type ValueKind = abi.ValueType

const (
	KindUndefined   = abi.Undefined
	KindNull        = abi.Null
	KindNumber      = abi.Number
	KindString      = abi.String
	KindBoolean     = abi.Boolean
	KindObject      = abi.Object
	KindFunction    = abi.Function
	KindError       = abi.Error
	KindArray       = abi.Array
	KindSymbol      = abi.Symbol
	KindArrayBuffer = abi.ArrayBuffer
	KindTypedArray  = abi.TypedArray
	KindDataView    = abi.DataView
)

// Valuer is implemented by Value and every typed view of it.
type Valuer interface {
	AsValue() Value
}

// Value is a reference to an engine-managed script value. It is valid while its runtime is
// open; the engine keeps values reachable from the stack alive, and Retain roots a value
// that must outlive the current call. The zero Value is invalid.
type Value struct {
	ctx *Context
	ref abi.ValueRef
}

// AsValue implements Valuer.
func (v Value) AsValue() Value {
	return v
}

// Context returns the context the value was created in.
func (v Value) Context() *Context {
	return v.ctx
}

func (v Value) engine(op string) (abi.Engine, error) {
	if v.ctx == nil {
		return nil, classify(op, abi.ErrorInvalidArgument)
	}
	return v.ctx.engine()
}

// derive runs a value-producing engine entry point on v.
func (v Value) derive(op string, call func(abi.Engine, *abi.ValueRef) abi.ErrorCode) (Value, error) {
	engine, err := v.engine(op)
	if err != nil {
		return Value{}, err
	}
	var ref abi.ValueRef
	if err := v.ctx.runtime.status(op, call(engine, &ref)); err != nil {
		return Value{}, err
	}
	return Value{ctx: v.ctx, ref: ref}, nil
}

// Kind returns the type tag of the value.
func (v Value) Kind() (ValueKind, error) {
	engine, err := v.engine("get value type")
	if err != nil {
		return 0, err
	}
	var kind abi.ValueType
	if err := v.ctx.runtime.status("get value type", engine.GetValueType(v.ref, &kind)); err != nil {
		return 0, err
	}
	return kind, nil
}

// Is reports whether the value has the given kind. Engine failures report false.
func (v Value) Is(kind ValueKind) bool {
	k, err := v.Kind()
	return err == nil && k == kind
}

// ToBoolean converts the value with the script ToBoolean rules.
func (v Value) ToBoolean() (Boolean, error) {
	r, err := v.derive("convert to boolean", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.ConvertValueToBoolean(v.ref, ref)
	})
	return Boolean(r), err
}

// ToNumber converts the value with the script ToNumber rules; valueOf may run.
func (v Value) ToNumber() (Number, error) {
	r, err := v.derive("convert to number", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.ConvertValueToNumber(v.ref, ref)
	})
	return Number(r), err
}

// ToString converts the value with the script ToString rules; toString may run.
func (v Value) ToString() (String, error) {
	r, err := v.derive("convert to string", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.ConvertValueToString(v.ref, ref)
	})
	return String(r), err
}

// ToObject converts the value with the script ToObject rules. null and undefined fail.
func (v Value) ToObject() (Object, error) {
	r, err := v.derive("convert to object", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.ConvertValueToObject(v.ref, ref)
	})
	return Object(r), err
}

// AsBoolean reinterprets the value as a Boolean if it is one.
func (v Value) AsBoolean() (Boolean, bool) {
	return Boolean(v), v.Is(KindBoolean)
}

// AsNumber reinterprets the value as a Number if it is one.
func (v Value) AsNumber() (Number, bool) {
	return Number(v), v.Is(KindNumber)
}

// AsString reinterprets the value as a String if it is one.
func (v Value) AsString() (String, bool) {
	return String(v), v.Is(KindString)
}

// AsObject reinterprets the value as an Object if it is any kind of object.
func (v Value) AsObject() (Object, bool) {
	k, err := v.Kind()
	if err != nil {
		return Object{}, false
	}
	switch k {
	case KindUndefined, KindNull, KindNumber, KindString, KindBoolean, KindSymbol:
		return Object{}, false
	}
	return Object(v), true
}

// AsFunction reinterprets the value as a Function. It fails with ErrNotFunction for
// anything that is not callable.
func (v Value) AsFunction() (Function, error) {
	k, err := v.Kind()
	if err != nil {
		return Function{}, err
	}
	if k != KindFunction {
		return Function{}, errors.WithStack(ErrNotFunction)
	}
	return Function(v), nil
}

// StrictEquals compares with the === operator.
func (v Value) StrictEquals(other Valuer) (bool, error) {
	return v.compare("strict equals", other, abi.Engine.StrictEquals)
}

// Equals compares with the == operator, which may run script.
func (v Value) Equals(other Valuer) (bool, error) {
	return v.compare("equals", other, abi.Engine.Equals)
}

func (v Value) compare(op string, other Valuer, cmp func(abi.Engine, abi.ValueRef, abi.ValueRef, *bool) abi.ErrorCode) (bool, error) {
	engine, err := v.engine(op)
	if err != nil {
		return false, err
	}
	var result bool
	if err := v.ctx.runtime.status(op, cmp(engine, v.ref, other.AsValue().ref, &result)); err != nil {
		return false, err
	}
	return result, nil
}

// Retain roots the value so the engine keeps it alive until Release. While any value is
// retained the runtime cannot be closed.
func (v Value) Retain() error {
	engine, err := v.engine("add reference")
	if err != nil {
		return err
	}
	if err := classify("add reference", engine.AddRef(v.ref, nil)); err != nil {
		return err
	}
	v.ctx.runtime.retained.Add(1)
	return nil
}

// Release undoes one Retain.
func (v Value) Release() error {
	engine, err := v.engine("release reference")
	if err != nil {
		return err
	}
	if err := classify("release reference", engine.Release(v.ref, nil)); err != nil {
		return err
	}
	v.ctx.runtime.retained.Add(-1)
	return nil
}
