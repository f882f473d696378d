package abi

import "fmt"

// ErrorCode is the status returned by every engine entry point. Zero is success.
type ErrorCode uint32

// Category groups error codes; it is the high 16 bits of a code.
type Category uint32

const (
	CategoryNone       Category = 0
	CategoryUsage      Category = 0x10000
	CategoryEngine     Category = 0x20000
	CategoryScript     Category = 0x30000
	CategoryFatal      Category = 0x40000
	CategoryDiagnostic Category = 0x50000
	// CategoryUnknown is reported for codes outside the known table.
	CategoryUnknown Category = 0xffff0000
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryUsage:
		return "usage"
	case CategoryEngine:
		return "engine"
	case CategoryScript:
		return "script"
	case CategoryFatal:
		return "fatal"
	case CategoryDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

const (
	NoError ErrorCode = 0

	ErrorCategoryUsage                      ErrorCode = 0x10000
	ErrorInvalidArgument                    ErrorCode = 0x10001
	ErrorNullArgument                       ErrorCode = 0x10002
	ErrorNoCurrentContext                   ErrorCode = 0x10003
	ErrorInExceptionState                   ErrorCode = 0x10004
	ErrorNotImplemented                     ErrorCode = 0x10005
	ErrorWrongThread                        ErrorCode = 0x10006
	ErrorRuntimeInUse                       ErrorCode = 0x10007
	ErrorBadSerializedScript                ErrorCode = 0x10008
	ErrorInDisabledState                    ErrorCode = 0x10009
	ErrorCannotDisableExecution             ErrorCode = 0x1000a
	ErrorHeapEnumInProgress                 ErrorCode = 0x1000b
	ErrorArgumentNotObject                  ErrorCode = 0x1000c
	ErrorInProfileCallback                  ErrorCode = 0x1000d
	ErrorInThreadServiceCallback            ErrorCode = 0x1000e
	ErrorCannotSerializeDebugScript         ErrorCode = 0x1000f
	ErrorAlreadyDebuggingContext            ErrorCode = 0x10010
	ErrorAlreadyProfilingContext            ErrorCode = 0x10011
	ErrorIdleNotEnabled                     ErrorCode = 0x10012
	ErrorCannotSetProjectionEnqueueCallback ErrorCode = 0x10013
	ErrorCannotStartProjection              ErrorCode = 0x10014
	ErrorInObjectBeforeCollectCallback      ErrorCode = 0x10015
	ErrorObjectNotInspectable               ErrorCode = 0x10016
	ErrorPropertyNotSymbol                  ErrorCode = 0x10017
	ErrorPropertyNotString                  ErrorCode = 0x10018
	ErrorInvalidContext                     ErrorCode = 0x10019
	ErrorInvalidModuleHostInfoKind          ErrorCode = 0x1001a
	ErrorModuleParsed                       ErrorCode = 0x1001b
	ErrorNoWeakRefRequired                  ErrorCode = 0x1001c
	ErrorPromisePending                     ErrorCode = 0x1001d
	ErrorModuleNotEvaluated                 ErrorCode = 0x1001e

	ErrorCategoryEngine ErrorCode = 0x20000
	ErrorOutOfMemory    ErrorCode = 0x20001
	ErrorBadFPUState    ErrorCode = 0x20002

	ErrorCategoryScript     ErrorCode = 0x30000
	ErrorScriptException    ErrorCode = 0x30001
	ErrorScriptCompile      ErrorCode = 0x30002
	ErrorScriptTerminated   ErrorCode = 0x30003
	ErrorScriptEvalDisabled ErrorCode = 0x30004

	ErrorCategoryFatal ErrorCode = 0x40000
	ErrorFatal         ErrorCode = 0x40001
	ErrorWrongRuntime  ErrorCode = 0x40002

	ErrorCategoryDiagError         ErrorCode = 0x50000
	ErrorDiagAlreadyInDebugMode    ErrorCode = 0x50001
	ErrorDiagNotInDebugMode        ErrorCode = 0x50002
	ErrorDiagNotAtBreak            ErrorCode = 0x50003
	ErrorDiagInvalidHandle         ErrorCode = 0x50004
	ErrorDiagObjectNotFound        ErrorCode = 0x50005
	ErrorDiagUnableToPerformAction ErrorCode = 0x50006
)

var errorMessages = map[ErrorCode]string{
	NoError: "no error",

	ErrorCategoryUsage:                      "incorrect usage of the API",
	ErrorInvalidArgument:                    "an argument to a hosting API was invalid",
	ErrorNullArgument:                       "an argument to a hosting API was null where null is not allowed",
	ErrorNoCurrentContext:                   "the hosting API requires a current context, but there is no current context",
	ErrorInExceptionState:                   "the engine is in an exception state and no APIs can be called until the exception is cleared",
	ErrorNotImplemented:                     "a hosting API is not yet implemented",
	ErrorWrongThread:                        "a hosting API was called on the wrong thread",
	ErrorRuntimeInUse:                       "a runtime that is still in use cannot be disposed",
	ErrorBadSerializedScript:                "a bad serialized script was used, or it was serialized by a different engine version",
	ErrorInDisabledState:                    "the runtime is in a disabled state",
	ErrorCannotDisableExecution:             "runtime does not support reliable script interruption",
	ErrorHeapEnumInProgress:                 "a heap enumeration is currently underway in the script context",
	ErrorArgumentNotObject:                  "a hosting API that operates on object values was called with a non-object value",
	ErrorInProfileCallback:                  "a script context is in the middle of a profile callback",
	ErrorInThreadServiceCallback:            "a thread service callback is currently underway",
	ErrorCannotSerializeDebugScript:         "scripts cannot be serialized in debug contexts",
	ErrorAlreadyDebuggingContext:            "the context cannot be put into a debug state because it is already in a debug state",
	ErrorAlreadyProfilingContext:            "the context cannot start profiling because it is already profiling",
	ErrorIdleNotEnabled:                     "idle notification given when the host did not enable idle processing",
	ErrorCannotSetProjectionEnqueueCallback: "the context did not accept the enqueue callback",
	ErrorCannotStartProjection:              "failed to start projection",
	ErrorInObjectBeforeCollectCallback:      "the operation is not supported in an object before collect callback",
	ErrorObjectNotInspectable:               "object cannot be unwrapped to IInspectable pointer",
	ErrorPropertyNotSymbol:                  "a hosting API that operates on symbol property ids was called with a non-symbol property id",
	ErrorPropertyNotString:                  "a hosting API that operates on string property ids was called with a non-string property id",
	ErrorInvalidContext:                     "the operation was called in the wrong context",
	ErrorInvalidModuleHostInfoKind:          "invalid module host info kind",
	ErrorModuleParsed:                       "module was parsed already",
	ErrorNoWeakRefRequired:                  "the value is a primitive that is not managed by the GC",
	ErrorPromisePending:                     "the promise object is still in the pending state",
	ErrorModuleNotEvaluated:                 "module was not yet evaluated",

	ErrorCategoryEngine: "error within the engine itself",
	ErrorOutOfMemory:    "the engine has run out of memory",
	ErrorBadFPUState:    "the engine failed to set the floating point unit state",

	ErrorCategoryScript:     "error in a script",
	ErrorScriptException:    "a JavaScript exception occurred while running a script",
	ErrorScriptCompile:      "JavaScript failed to compile",
	ErrorScriptTerminated:   "a script was terminated due to a request to suspend a runtime",
	ErrorScriptEvalDisabled: "a script was terminated because it tried to use eval or Function and eval was disabled",

	ErrorCategoryFatal: "fatal engine failure",
	ErrorFatal:         "a fatal error in the engine has occurred",
	ErrorWrongRuntime:  "a hosting API was called with an object created on a different runtime",

	ErrorCategoryDiagError:         "failure during a diagnostic operation",
	ErrorDiagAlreadyInDebugMode:    "the VM is already in debug mode",
	ErrorDiagNotInDebugMode:        "the debugging API can only be called when the VM is in debug mode",
	ErrorDiagNotAtBreak:            "the debugging API can only be called when the VM is at a break",
	ErrorDiagInvalidHandle:         "debugging API was called with an invalid handle",
	ErrorDiagObjectNotFound:        "the object for which the debugging API was called was not found",
	ErrorDiagUnableToPerformAction: "the VM was unable to perform the requested action",
}

// Known reports whether c is part of the engine's published code table.
func (c ErrorCode) Known() bool {
	_, ok := errorMessages[c]
	return ok
}

// Category returns the group c belongs to, or CategoryUnknown for unmapped codes.
func (c ErrorCode) Category() Category {
	if !c.Known() {
		return CategoryUnknown
	}
	return Category(uint32(c) & 0xffff0000)
}

func (c ErrorCode) String() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("unknown engine status 0x%x", uint32(c))
}
