package chakracore_test

import (
	"github.com/stretchr/testify/mock"

	"github.com/buke/chakracore-go/abi"
)

// faultyEngine wraps a working engine and lets tests override selected entry points.
// Entry points with an expectation delegate to the wrapped engine when the expectation
// returns abi.NoError.
type faultyEngine struct {
	abi.Engine
	mock.Mock
}

func (f *faultyEngine) anyRuntime() any {
	return mock.AnythingOfType("abi.RuntimeHandle")
}

func (f *faultyEngine) Version() string {
	return f.Called().String(0)
}

func (f *faultyEngine) DisposeRuntime(runtime abi.RuntimeHandle) abi.ErrorCode {
	if code := f.Called(runtime).Get(0).(abi.ErrorCode); code != abi.NoError {
		return code
	}
	return f.Engine.DisposeRuntime(runtime)
}

func (f *faultyEngine) CreateObject(object *abi.ValueRef) abi.ErrorCode {
	if code := f.Called(object).Get(0).(abi.ErrorCode); code != abi.NoError {
		return code
	}
	return f.Engine.CreateObject(object)
}

func (f *faultyEngine) GetUndefinedValue(undefinedValue *abi.ValueRef) abi.ErrorCode {
	if code := f.Called(undefinedValue).Get(0).(abi.ErrorCode); code != abi.NoError {
		return code
	}
	return f.Engine.GetUndefinedValue(undefinedValue)
}

// CopyString is scripted entirely by the test's expectations.
func (f *faultyEngine) CopyString(value abi.ValueRef, buffer []byte, length *int) abi.ErrorCode {
	return f.Called(value, buffer, length).Get(0).(abi.ErrorCode)
}
