package chakracore

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/buke/chakracore-go/abi"
)

// Error is a failed engine call: the operation and the status the engine returned.
type Error struct {
	Op   string
	Code abi.ErrorCode
}

// Error implements the error interface.
func (err *Error) Error() string {
	if err.Op == "" {
		return fmt.Sprintf("chakracore: %s", err.Code)
	}
	return fmt.Sprintf("chakracore: %s: %s", err.Op, err.Code)
}

// Category reports the error group of the status.
func (err *Error) Category() abi.Category {
	return err.Code.Category()
}

// Is matches the sentinels below by status code, so errors.Is(err, ErrRuntimeInUse) holds
// for any failed operation that returned ErrorRuntimeInUse.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == ErrUnknownStatus {
		return !err.Code.Known()
	}
	return t.Op == "" && t.Code == err.Code
}

// Engine status sentinels.
var (
	ErrInvalidArgument     = &Error{Code: abi.ErrorInvalidArgument}
	ErrNullArgument        = &Error{Code: abi.ErrorNullArgument}
	ErrNoCurrentContext    = &Error{Code: abi.ErrorNoCurrentContext}
	ErrInExceptionState    = &Error{Code: abi.ErrorInExceptionState}
	ErrNotImplemented      = &Error{Code: abi.ErrorNotImplemented}
	ErrWrongThread         = &Error{Code: abi.ErrorWrongThread}
	ErrRuntimeInUse        = &Error{Code: abi.ErrorRuntimeInUse}
	ErrArgumentNotObject   = &Error{Code: abi.ErrorArgumentNotObject}
	ErrIdleNotEnabled      = &Error{Code: abi.ErrorIdleNotEnabled}
	ErrOutOfMemory         = &Error{Code: abi.ErrorOutOfMemory}
	ErrScriptException     = &Error{Code: abi.ErrorScriptException}
	ErrScriptCompile       = &Error{Code: abi.ErrorScriptCompile}
	ErrScriptTerminated    = &Error{Code: abi.ErrorScriptTerminated}
	ErrScriptEvalDisabled  = &Error{Code: abi.ErrorScriptEvalDisabled}
	ErrFatal               = &Error{Code: abi.ErrorFatal}
	ErrWrongRuntime        = &Error{Code: abi.ErrorWrongRuntime}
	ErrDiagNotInDebugMode  = &Error{Code: abi.ErrorDiagNotInDebugMode}
	ErrDiagInvalidHandle   = &Error{Code: abi.ErrorDiagInvalidHandle}
	ErrDiagObjectNotFound  = &Error{Code: abi.ErrorDiagObjectNotFound}
	ErrDiagUnableToPerform = &Error{Code: abi.ErrorDiagUnableToPerformAction}

	// ErrUnknownStatus matches any status the engine returned that is not in the table.
	ErrUnknownStatus = &Error{Code: abi.ErrorCode(abi.CategoryUnknown)}
)

// Host-side failures; these never come from the engine.
var (
	ErrRuntimeClosed      = errors.New("chakracore: runtime is closed")
	ErrScriptClosed       = errors.New("chakracore: script is closed")
	ErrEmbeddedNull       = errors.New("chakracore: embedded NUL byte")
	ErrMissingTerminator  = errors.New("chakracore: string buffer is not NUL terminated")
	ErrLengthMismatch     = errors.New("chakracore: copied length differs from measured length")
	ErrInvalidUTF8        = errors.New("chakracore: string is not valid UTF-8")
	ErrNotFunction        = errors.New("chakracore: value is not a function")
	ErrFunctionReleased   = errors.New("chakracore: function has been released")
	ErrIncompatibleEngine = errors.New("chakracore: incompatible engine")
	ErrContextBusy        = errors.New("chakracore: another context is current on this thread")
)

// classify maps an engine status to an error; NoError maps to nil.
func classify(op string, code abi.ErrorCode) error {
	if code == abi.NoError {
		return nil
	}
	return &Error{Op: op, Code: code}
}

// CategoryOf returns the engine error category of err, or CategoryNone when err does not
// carry an engine status.
func CategoryOf(err error) abi.Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category()
	}
	return abi.CategoryNone
}
