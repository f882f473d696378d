//go:build chakracore && cgo

package nativeengine_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buke/chakracore-go/abi"
	"github.com/buke/chakracore-go/nativeengine"
)

func TestNativeEngine(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e := nativeengine.New()
	require.NoError(t, abi.CheckVersion(e.Version()))

	var rt abi.RuntimeHandle
	require.Equal(t, abi.NoError, e.CreateRuntime(abi.RuntimeAttributeNone, nil, &rt))
	var ctx abi.ContextRef
	require.Equal(t, abi.NoError, e.CreateContext(rt, &ctx))

	var v abi.ValueRef
	require.Equal(t, abi.ErrorNoCurrentContext, e.IntToNumber(1, &v))
	require.Equal(t, abi.NoError, e.SetCurrentContext(ctx))

	var sum abi.ValueRef
	native := func(callee abi.ValueRef, isConstructCall bool, arguments []abi.ValueRef, argumentCount uint16, _ uintptr) abi.ValueRef {
		total := int32(0)
		for _, a := range arguments[1:argumentCount] {
			var i int32
			require.Equal(t, abi.NoError, e.NumberToInt(a, &i))
			total += i
		}
		require.Equal(t, abi.NoError, e.IntToNumber(total, &sum))
		return sum
	}
	var fn, undefined, one, two, result abi.ValueRef
	require.Equal(t, abi.NoError, e.CreateFunction(native, 0, &fn))
	require.Equal(t, abi.NoError, e.GetUndefinedValue(&undefined))
	require.Equal(t, abi.NoError, e.IntToNumber(1, &one))
	require.Equal(t, abi.NoError, e.IntToNumber(2, &two))
	require.Equal(t, abi.NoError, e.CallFunction(fn, []abi.ValueRef{undefined, one, two}, &result))

	var i int32
	require.Equal(t, abi.NoError, e.NumberToInt(result, &i))
	require.Equal(t, int32(3), i)

	var s abi.ValueRef
	require.Equal(t, abi.NoError, e.CreateString([]byte("Hello World!"), &s))
	var n int
	require.Equal(t, abi.NoError, e.CopyString(s, nil, &n))
	buf := make([]byte, n+1)
	require.Equal(t, abi.NoError, e.CopyString(s, buf, &n))
	require.Equal(t, "Hello World!", string(buf[:n]))

	require.Equal(t, abi.ErrorRuntimeInUse, e.DisposeRuntime(rt))
	require.Equal(t, abi.NoError, e.SetCurrentContext(abi.InvalidReference))
	require.Equal(t, abi.NoError, e.DisposeRuntime(rt))
}
