package abi

// Engine is the flat function table of the script engine. Implementations must be safe
// for use by several OS threads, each with its own current context; the engine tracks the
// current context per thread.
type Engine interface {
	// Version reports the ABI version the engine implements.
	Version() string

	// Lifecycle.
	CreateRuntime(attributes RuntimeAttributes, threadService ThreadServiceCallback, runtime *RuntimeHandle) ErrorCode
	DisposeRuntime(runtime RuntimeHandle) ErrorCode
	CollectGarbage(runtime RuntimeHandle) ErrorCode
	CreateContext(runtime RuntimeHandle, newContext *ContextRef) ErrorCode
	SetCurrentContext(context ContextRef) ErrorCode
	GetCurrentContext(currentContext *ContextRef) ErrorCode
	Idle(nextIdleTick *uint32) ErrorCode

	// Execution. data must stay valid and unmodified until the runtime is disposed or the
	// finalizer runs.
	CreateExternalArrayBuffer(data []byte, finalize FinalizeCallback, callbackState uintptr, result *ValueRef) ErrorCode
	Run(script ValueRef, sourceContext SourceContext, sourceURL ValueRef, parseAttributes ParseScriptAttributes, result *ValueRef) ErrorCode
	HasException(hasException *bool) ErrorCode
	GetAndClearException(exception *ValueRef) ErrorCode
	SetException(exception ValueRef) ErrorCode
	CreateError(message ValueRef, errorValue *ValueRef) ErrorCode

	// References.
	AddRef(ref ValueRef, count *uint32) ErrorCode
	Release(ref ValueRef, count *uint32) ErrorCode

	// Values.
	GetUndefinedValue(undefinedValue *ValueRef) ErrorCode
	GetNullValue(nullValue *ValueRef) ErrorCode
	BoolToBoolean(value bool, booleanValue *ValueRef) ErrorCode
	BooleanToBool(value ValueRef, boolValue *bool) ErrorCode
	IntToNumber(intValue int32, value *ValueRef) ErrorCode
	DoubleToNumber(doubleValue float64, value *ValueRef) ErrorCode
	NumberToInt(value ValueRef, intValue *int32) ErrorCode
	NumberToDouble(value ValueRef, doubleValue *float64) ErrorCode
	CreateString(content []byte, value *ValueRef) ErrorCode
	// CopyString writes the UTF-8 bytes of value into buffer. A nil buffer only measures: length
	// receives the required size. Otherwise length receives the number of bytes written.
	// No terminator is written.
	CopyString(value ValueRef, buffer []byte, length *int) ErrorCode
	GetStringLength(value ValueRef, length *int) ErrorCode
	ConvertValueToBoolean(value ValueRef, result *ValueRef) ErrorCode
	ConvertValueToNumber(value ValueRef, result *ValueRef) ErrorCode
	ConvertValueToString(value ValueRef, result *ValueRef) ErrorCode
	ConvertValueToObject(value ValueRef, result *ValueRef) ErrorCode
	GetValueType(value ValueRef, valueType *ValueType) ErrorCode
	Equals(object1, object2 ValueRef, result *bool) ErrorCode
	StrictEquals(object1, object2 ValueRef, result *bool) ErrorCode

	// Objects. Property keys are string or symbol values.
	CreateObject(object *ValueRef) ErrorCode
	GetGlobalObject(globalObject *ValueRef) ErrorCode
	ObjectHasProperty(object, key ValueRef, hasProperty *bool) ErrorCode
	ObjectGetProperty(object, key ValueRef, value *ValueRef) ErrorCode
	ObjectSetProperty(object, key, value ValueRef, useStrictRules bool) ErrorCode
	ObjectDeleteProperty(object, key ValueRef, useStrictRules bool, result *ValueRef) ErrorCode

	// Functions. arguments[0] is the receiver.
	CreateFunction(nativeFunction NativeFunction, callbackState uintptr, function *ValueRef) ErrorCode
	CallFunction(function ValueRef, arguments []ValueRef, result *ValueRef) ErrorCode
	ConstructObject(function ValueRef, arguments []ValueRef, result *ValueRef) ErrorCode
}
