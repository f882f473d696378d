package chakracore

import "github.com/buke/chakracore-go/abi"

// Object is a Value known to be an object (including functions, arrays and errors).
type Object Value

// AsValue implements Valuer.
func (o Object) AsValue() Value {
	return Value(o)
}

// Has reports whether the object or its prototype chain has the property.
func (o Object) Has(key String) (bool, error) {
	engine, err := Value(o).engine("has property")
	if err != nil {
		return false, err
	}
	var has bool
	if err := o.ctx.runtime.status("has property", engine.ObjectHasProperty(o.ref, key.ref, &has)); err != nil {
		return false, err
	}
	return has, nil
}

// Get returns the property value; a missing property yields undefined. Getters run.
func (o Object) Get(key String) (Value, error) {
	return Value(o).derive("get property", func(e abi.Engine, ref *abi.ValueRef) abi.ErrorCode {
		return e.ObjectGetProperty(o.ref, key.ref, ref)
	})
}

// Set assigns the property with strict-mode rules: writing a read-only property is an error.
func (o Object) Set(key String, value Valuer) error {
	engine, err := Value(o).engine("set property")
	if err != nil {
		return err
	}
	return o.ctx.runtime.status("set property", engine.ObjectSetProperty(o.ref, key.ref, value.AsValue().ref, true))
}

// Delete removes the property with strict-mode rules: deleting a non-configurable property
// is an error. It reports the engine's delete result.
func (o Object) Delete(key String) (bool, error) {
	engine, err := Value(o).engine("delete property")
	if err != nil {
		return false, err
	}
	var result abi.ValueRef
	if err := o.ctx.runtime.status("delete property", engine.ObjectDeleteProperty(o.ref, key.ref, true, &result)); err != nil {
		return false, err
	}
	var deleted bool
	if err := o.ctx.runtime.status("delete property", engine.BooleanToBool(result, &deleted)); err != nil {
		return false, err
	}
	return deleted, nil
}

// HasNamed is Has with a Go string key.
func (o Object) HasNamed(name string) (bool, error) {
	key, err := o.key(name)
	if err != nil {
		return false, err
	}
	return o.Has(key)
}

// GetNamed is Get with a Go string key.
func (o Object) GetNamed(name string) (Value, error) {
	key, err := o.key(name)
	if err != nil {
		return Value{}, err
	}
	return o.Get(key)
}

// SetNamed is Set with a Go string key.
func (o Object) SetNamed(name string, value Valuer) error {
	key, err := o.key(name)
	if err != nil {
		return err
	}
	return o.Set(key, value)
}

// DeleteNamed is Delete with a Go string key.
func (o Object) DeleteNamed(name string) (bool, error) {
	key, err := o.key(name)
	if err != nil {
		return false, err
	}
	return o.Delete(key)
}

func (o Object) key(name string) (String, error) {
	if _, err := Value(o).engine("property key"); err != nil {
		return String{}, err
	}
	return o.ctx.String(name)
}
