package chakracore

import (
	"sync"
	"sync/atomic"

	"github.com/buke/chakracore-go/abi"
)

// closure is a host function registered with the engine.
type closure struct {
	ctx *Context
	fn  NativeFunc
}

// closureRegistry maps callback tokens to closures. The engine only ever sees the token,
// so a stale callback finds nothing instead of a freed Go object.
type closureRegistry struct {
	closures sync.Map // map[uintptr]*closure
	byRef    sync.Map // map[abi.ValueRef]uintptr
	nextID   atomic.Uintptr
}

func newClosureRegistry() *closureRegistry {
	return &closureRegistry{}
}

// Store registers c and returns its token. Tokens start at 1; 0 is never issued.
func (cr *closureRegistry) Store(c *closure) uintptr {
	id := cr.nextID.Add(1)
	cr.closures.Store(id, c)
	return id
}

// Bind records the engine function created for token id.
func (cr *closureRegistry) Bind(id uintptr, ref abi.ValueRef) {
	cr.byRef.Store(ref, id)
}

// Load returns the closure registered under id.
func (cr *closureRegistry) Load(id uintptr) (*closure, bool) {
	if v, ok := cr.closures.Load(id); ok {
		return v.(*closure), true
	}
	return nil, false
}

// Delete removes the closure registered under id.
func (cr *closureRegistry) Delete(id uintptr) bool {
	_, ok := cr.closures.LoadAndDelete(id)
	return ok
}

// DeleteRef removes the closure bound to the engine function ref.
func (cr *closureRegistry) DeleteRef(ref abi.ValueRef) bool {
	id, ok := cr.byRef.LoadAndDelete(ref)
	if !ok {
		return false
	}
	return cr.Delete(id.(uintptr))
}

// Clear removes every closure and returns how many there were.
func (cr *closureRegistry) Clear() int {
	n := 0
	cr.closures.Range(func(key, _ any) bool {
		if _, ok := cr.closures.LoadAndDelete(key); ok {
			n++
		}
		return true
	})
	cr.byRef.Range(func(key, _ any) bool {
		cr.byRef.Delete(key)
		return true
	})
	return n
}

// Count returns the number of registered closures.
func (cr *closureRegistry) Count() int {
	n := 0
	cr.closures.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
