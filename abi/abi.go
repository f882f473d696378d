/*
Package abi describes the flat ChakraCore JSRT function table consumed by package chakracore.

Every entry point returns an ErrorCode as its primary result and writes computed outputs
through out-parameters. Handles are opaque: an implementation may back them with real
engine pointers (nativeengine) or with table indices (gojaengine).
*/
package abi

// RuntimeHandle is an opaque reference to an engine runtime.
type RuntimeHandle uintptr

// ContextRef is an opaque reference to a script context.
type ContextRef uintptr

// ValueRef is an opaque reference to an engine-managed script value.
type ValueRef uintptr

// SourceContext is the cookie identifying a script for diagnostics.
type SourceContext uintptr

// InvalidReference is the null handle. SetCurrentContext(InvalidReference) clears the current context.
const InvalidReference = 0

// InvalidRuntimeHandle is the null runtime handle.
const InvalidRuntimeHandle RuntimeHandle = 0

// RuntimeAttributes is the creation-time configuration bitmask of a runtime.
type RuntimeAttributes uint32

const (
	RuntimeAttributeNone RuntimeAttributes = 0
	// No work (such as garbage collection) happens on background threads.
	RuntimeAttributeDisableBackgroundWork RuntimeAttributes = 0x1
	// Reliable script interruption at the cost of some performance.
	RuntimeAttributeAllowScriptInterrupt RuntimeAttributes = 0x2
	// The host calls Idle; otherwise memory is managed slightly more aggressively.
	RuntimeAttributeEnableIdleProcessing        RuntimeAttributes = 0x4
	RuntimeAttributeDisableNativeCodeGeneration RuntimeAttributes = 0x8
	// eval and the Function constructor terminate the script.
	RuntimeAttributeDisableEval                     RuntimeAttributes = 0x10
	RuntimeAttributeEnableExperimentalFeatures      RuntimeAttributes = 0x20
	RuntimeAttributeDispatchSetExceptionsToDebugger RuntimeAttributes = 0x40
	// Out-of-memory is reported as an error instead of a fail-fast.
	RuntimeAttributeDisableFatalOnOOM               RuntimeAttributes = 0x80
	RuntimeAttributeDisableExecutablePageAllocation RuntimeAttributes = 0x100

	// RuntimeAttributeAll is the union of every defined attribute.
	RuntimeAttributeAll RuntimeAttributes = 0x1ff
)

// Has reports whether every bit of flag is set.
func (a RuntimeAttributes) Has(flag RuntimeAttributes) bool {
	return a&flag == flag
}

// ParseScriptAttributes controls how Run interprets a source buffer.
type ParseScriptAttributes uint32

const (
	ParseScriptAttributeNone ParseScriptAttributes = 0
	// The script is library code and hidden from the debugger.
	ParseScriptAttributeLibraryCode ParseScriptAttributes = 0x1
	// The source buffer holds UTF-16LE instead of UTF-8.
	ParseScriptAttributeArrayBufferIsUtf16Encoded ParseScriptAttributes = 0x2
)

// ValueType is the engine's runtime type tag of a value.
type ValueType uint32

const (
	Undefined ValueType = iota
	Null
	Number
	String
	Boolean
	Object
	Function
	Error
	Array
	Symbol
	ArrayBuffer
	TypedArray
	DataView
)

var valueTypeNames = [...]string{
	Undefined:   "undefined",
	Null:        "null",
	Number:      "number",
	String:      "string",
	Boolean:     "boolean",
	Object:      "object",
	Function:    "function",
	Error:       "error",
	Array:       "array",
	Symbol:      "symbol",
	ArrayBuffer: "arraybuffer",
	TypedArray:  "typedarray",
	DataView:    "dataview",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// NativeFunction is the fixed signature of a host function invoked by the engine.
// arguments[0] is the receiver and is included in argumentCount. The arguments slice is
// only valid for the duration of the call. Returning InvalidReference yields undefined.
type NativeFunction func(callee ValueRef, isConstructCall bool, arguments []ValueRef, argumentCount uint16, callbackState uintptr) ValueRef

// FinalizeCallback is invoked once the engine no longer references an external buffer.
type FinalizeCallback func(callbackState uintptr)

// BackgroundWorkItemCallback runs one unit of engine background work.
type BackgroundWorkItemCallback func(callbackState uintptr)

// ThreadServiceCallback lets the host schedule engine background work. Returning false
// asks the engine to run the work itself.
type ThreadServiceCallback func(callback BackgroundWorkItemCallback, callbackState uintptr) bool
