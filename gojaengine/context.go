package gojaengine

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/buke/chakracore-go/abi"
)

// errEvalDisabled is the interrupt value raised by the eval replacement.
var errEvalDisabled = errors.New("eval is disabled")

// helperProgram exposes the operations goja's Go API does not offer with ECMAScript
// semantics (abstract equality, strict-mode property writes, user-visible conversions).
var helperProgram = goja.MustCompile("helpers", `(function () {
	var Obj = Object, Str = String;
	var define = Object.defineProperty, protoOf = Object.getPrototypeOf;
	return {
		bool: function (v) { return !!v; },
		num: function (v) { return +v; },
		str: function (v) { return typeof v === 'symbol' ? '' + v : Str(v); },
		obj: function (v) {
			if (v === null || v === undefined) throw new TypeError('cannot convert ' + v + ' to object');
			return Obj(v);
		},
		equals: function (a, b) { return a == b; },
		has: function (o, k) { return k in o; },
		get: function (o, k) { return o[k]; },
		set: function (o, k, v) { o[k] = v; },
		setStrict: function (o, k, v) { 'use strict'; o[k] = v; },
		del: function (o, k) { return delete o[k]; },
		delStrict: function (o, k) { 'use strict'; return delete o[k]; },
		native: function (impl) {
			return function () { 'use strict'; return impl(new.target !== undefined, this, arguments); };
		},
		disableEval: function (g, thrower) {
			var stub = function () { return thrower(); };
			var lock = function (o, k) {
				try { define(o, k, { value: stub, writable: false, configurable: false }); } catch (e) {}
			};
			lock(g.Function.prototype, 'constructor');
			lock(protoOf(function* () {}), 'constructor');
			lock(protoOf(async function () {}), 'constructor');
			lock(g, 'eval');
			lock(g, 'Function');
		}
	};
})()`, false)

type helpers struct {
	bool, num, str, obj                 goja.Callable
	equals, has, get, set, setStrict    goja.Callable
	del, delStrict, native, disableEval goja.Callable
}

// jsContext is one script context: a goja VM plus its helper functions.
type jsContext struct {
	ref abi.ContextRef
	rt  *jsRuntime
	vm  *goja.Runtime
	fn  helpers

	errorCtor, syntaxErrorCtor goja.Value
	// dataViewProto is the realm's original DataView.prototype.
	dataViewProto *goja.Object

	// objects maps each object that has a handle to it, so an object keeps one identity.
	objects         map[*goja.Object]abi.ValueRef
	undefined, null abi.ValueRef
}

func newJSContext(rt *jsRuntime, withConsole bool, logger *zap.Logger) (*jsContext, error) {
	vm := goja.New()
	c := &jsContext{
		rt:              rt,
		vm:              vm,
		objects:         make(map[*goja.Object]abi.ValueRef),
		errorCtor:       vm.Get("Error"),
		syntaxErrorCtor: vm.Get("SyntaxError"),
	}
	if ctor, ok := vm.Get("DataView").(*goja.Object); ok {
		c.dataViewProto, _ = ctor.Get("prototype").(*goja.Object)
	}

	v, err := vm.RunProgram(helperProgram)
	if err != nil {
		return nil, errors.Wrap(err, "run helper program")
	}
	table := v.ToObject(vm)
	for name, dst := range map[string]*goja.Callable{
		"bool":        &c.fn.bool,
		"num":         &c.fn.num,
		"str":         &c.fn.str,
		"obj":         &c.fn.obj,
		"equals":      &c.fn.equals,
		"has":         &c.fn.has,
		"get":         &c.fn.get,
		"set":         &c.fn.set,
		"setStrict":   &c.fn.setStrict,
		"del":         &c.fn.del,
		"delStrict":   &c.fn.delStrict,
		"native":      &c.fn.native,
		"disableEval": &c.fn.disableEval,
	} {
		fn, ok := goja.AssertFunction(table.Get(name))
		if !ok {
			return nil, errors.Errorf("helper %q is not a function", name)
		}
		*dst = fn
	}

	if rt.attributes.Has(abi.RuntimeAttributeDisableEval) {
		thrower := vm.ToValue(func(goja.FunctionCall) goja.Value {
			vm.Interrupt(errEvalDisabled)
			return goja.Undefined()
		})
		if _, err := c.fn.disableEval(goja.Undefined(), vm.GlobalObject(), thrower); err != nil {
			return nil, errors.Wrap(err, "disable eval")
		}
	}

	if withConsole {
		reg := new(require.Registry)
		reg.RegisterNativeModule("console", console.RequireWithPrinter(printer{logger: logger}))
		reg.Enable(vm)
		console.Enable(vm)
	}
	return c, nil
}

// newError constructs an Error (or SyntaxError) of the context's realm.
func (c *jsContext) newError(ctor goja.Value, message string) goja.Value {
	if obj, err := c.vm.New(ctor, c.vm.ToValue(message)); err == nil {
		return obj
	}
	return c.vm.NewGoError(errors.New(message))
}

// printer forwards console output to zap.
type printer struct {
	logger *zap.Logger
}

func (p printer) Log(s string)   { p.logger.Info(s, zap.String("source", "console")) }
func (p printer) Warn(s string)  { p.logger.Warn(s, zap.String("source", "console")) }
func (p printer) Error(s string) { p.logger.Error(s, zap.String("source", "console")) }
