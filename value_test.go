package chakracore_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buke/chakracore-go"
	"github.com/buke/chakracore-go/abi"
	"github.com/buke/chakracore-go/gojaengine"
)

// TestInt32RoundTrip tests that host values survive a trip through the engine
func TestInt32RoundTrip(t *testing.T) {
	_, ctx := newTestContext(t)

	for _, n := range []int32{0, 1, -1, 42, math.MaxInt32, math.MinInt32} {
		v, err := ctx.Int32(n)
		require.NoError(t, err)
		require.True(t, v.AsValue().Is(chakracore.KindNumber))
		got, err := v.ToInt32()
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	_, ctx := newTestContext(t)

	for _, f := range []float64{0, 3.5, -2.25, 1e300, math.SmallestNonzeroFloat64, math.Inf(1)} {
		v, err := ctx.Float64(f)
		require.NoError(t, err)
		got, err := v.ToFloat64()
		require.NoError(t, err)
		require.Equal(t, f, got)
	}

	v, err := ctx.Float64(math.NaN())
	require.NoError(t, err)
	got, err := v.ToFloat64()
	require.NoError(t, err)
	require.True(t, math.IsNaN(got))
}

func TestBoolRoundTrip(t *testing.T) {
	_, ctx := newTestContext(t)

	for _, b := range []bool{true, false} {
		v, err := ctx.Bool(b)
		require.NoError(t, err)
		require.True(t, v.AsValue().Is(chakracore.KindBoolean))
		got, err := v.ToBool()
		require.NoError(t, err)
		require.Equal(t, b, got)
	}
}

func TestStringRoundTrip(t *testing.T) {
	_, ctx := newTestContext(t)

	for _, s := range []string{"", "Hello World!", "héllo 👋", "日本語"} {
		v, err := ctx.String(s)
		require.NoError(t, err)
		require.True(t, v.AsValue().Is(chakracore.KindString))
		got, err := v.Text()
		require.NoError(t, err)
		require.Equal(t, s, got)
	}

	v, err := ctx.StringBytes([]byte("bytes"))
	require.NoError(t, err)
	b, err := v.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("bytes"), b)
}

func TestNumberToInt32(t *testing.T) {
	_, ctx := newTestContext(t)

	tests := []struct {
		in   float64
		want int32
	}{
		{3.9, 3},
		{-3.9, -3},
		{math.Pow(2, 32) + 5, 5},
		{math.Pow(2, 31), math.MinInt32},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		v, err := ctx.Float64(tt.in)
		require.NoError(t, err)
		got, err := v.ToInt32()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ToInt32(%v)", tt.in)
	}
}

func TestStringLength(t *testing.T) {
	_, ctx := newTestContext(t)

	for s, want := range map[string]int{"": 0, "abc": 3, "héllo 👋": 8} {
		v, err := ctx.String(s)
		require.NoError(t, err)
		n, err := v.Length()
		require.NoError(t, err)
		require.Equal(t, want, n, s)
	}
}

func TestStringEmbeddedNull(t *testing.T) {
	_, ctx := newTestContext(t)

	v, err := ctx.Eval(`'a\u0000b'`)
	require.NoError(t, err)
	s, ok := v.AsString()
	require.True(t, ok)
	n, err := s.Length()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	_, err = s.Text()
	require.ErrorIs(t, err, chakracore.ErrEmbeddedNull)
}

// TestStringCopyValidation tests the checks applied to strings copied out of the engine
func TestStringCopyValidation(t *testing.T) {
	engine := &faultyEngine{Engine: gojaengine.New()}
	engine.On("Version").Return(abi.Version)
	engine.On("DisposeRuntime", engine.anyRuntime()).Return(abi.NoError)
	_, ctx := newTestContext(t, chakracore.WithEngine(engine))

	s, err := ctx.String("abc")
	require.NoError(t, err)

	sizing := mock.MatchedBy(func(b []byte) bool { return b == nil })
	fill := mock.MatchedBy(func(b []byte) bool { return b != nil })
	expect := func(size int, content string, reported int) {
		engine.On("CopyString", mock.Anything, sizing, mock.Anything).Return(abi.NoError).Run(func(args mock.Arguments) {
			*args.Get(2).(*int) = size
		}).Once()
		engine.On("CopyString", mock.Anything, fill, mock.Anything).Return(abi.NoError).Run(func(args mock.Arguments) {
			copy(args.Get(1).([]byte), content)
			*args.Get(2).(*int) = reported
		}).Once()
	}

	expect(3, "abc", 3)
	got, err := s.Text()
	require.NoError(t, err)
	require.Equal(t, "abc", got)

	expect(3, "ab", 2)
	_, err = s.Text()
	require.ErrorIs(t, err, chakracore.ErrLengthMismatch)

	expect(2, "abX", 2)
	_, err = s.Text()
	require.ErrorIs(t, err, chakracore.ErrMissingTerminator)

	expect(3, "a\x00b", 3)
	_, err = s.Text()
	require.ErrorIs(t, err, chakracore.ErrEmbeddedNull)

	expect(2, "\xff\xfe", 2)
	_, err = s.Text()
	require.ErrorIs(t, err, chakracore.ErrInvalidUTF8)

	engine.On("CopyString", mock.Anything, sizing, mock.Anything).Return(abi.ErrorCode(0x10fff)).Once()
	_, err = s.Text()
	require.ErrorIs(t, err, chakracore.ErrUnknownStatus)
	require.Equal(t, abi.CategoryUnknown, chakracore.CategoryOf(err))

	engine.AssertNumberOfCalls(t, "CopyString", 11)
}

func TestUnknownStatus(t *testing.T) {
	engine := &faultyEngine{Engine: gojaengine.New()}
	engine.On("Version").Return(abi.Version)
	engine.On("DisposeRuntime", engine.anyRuntime()).Return(abi.NoError)
	engine.On("CreateObject", mock.Anything).Return(abi.ErrorCode(0x7ffff)).Once()
	engine.On("CreateObject", mock.Anything).Return(abi.NoError)
	_, ctx := newTestContext(t, chakracore.WithEngine(engine))

	_, err := ctx.Object()
	require.ErrorIs(t, err, chakracore.ErrUnknownStatus)
	require.Equal(t, abi.CategoryUnknown, chakracore.CategoryOf(err))

	obj, err := ctx.Object()
	require.NoError(t, err)
	require.True(t, obj.AsValue().Is(chakracore.KindObject))
}

// TestValueKinds tests the type tag of every kind of value
func TestValueKinds(t *testing.T) {
	_, ctx := newTestContext(t)

	for source, want := range map[string]chakracore.ValueKind{
		"undefined":                        chakracore.KindUndefined,
		"null":                             chakracore.KindNull,
		"1.5":                              chakracore.KindNumber,
		"'s'":                              chakracore.KindString,
		"false":                            chakracore.KindBoolean,
		"({})":                             chakracore.KindObject,
		"(function () {})":                 chakracore.KindFunction,
		"new RangeError('x')":              chakracore.KindError,
		"[]":                               chakracore.KindArray,
		"Symbol.iterator":                  chakracore.KindSymbol,
		"new ArrayBuffer(8)":               chakracore.KindArrayBuffer,
		"new Float64Array(2)":              chakracore.KindTypedArray,
		"new DataView(new ArrayBuffer(8))": chakracore.KindDataView,
	} {
		v, err := ctx.Eval(source)
		require.NoError(t, err, source)
		kind, err := v.Kind()
		require.NoError(t, err, source)
		require.Equal(t, want, kind, source)
	}

	undefined, err := ctx.Undefined()
	require.NoError(t, err)
	require.True(t, undefined.Is(chakracore.KindUndefined))
	null, err := ctx.Null()
	require.NoError(t, err)
	require.True(t, null.Is(chakracore.KindNull))

	var zero chakracore.Value
	_, err = zero.Kind()
	require.ErrorIs(t, err, chakracore.ErrInvalidArgument)
	require.False(t, zero.Is(chakracore.KindUndefined))
}

// TestValueKindProxyTraps tests that classifying a proxy runs none of its traps and leaves
// the context usable
func TestValueKindProxyTraps(t *testing.T) {
	_, ctx := newTestContext(t)

	for source, want := range map[string]chakracore.ValueKind{
		"new Proxy({}, { getPrototypeOf() { throw new Error('trap') } })":             chakracore.KindObject,
		"new Proxy(function () {}, { getPrototypeOf() { throw new Error('trap') } })": chakracore.KindFunction,
	} {
		v, err := ctx.Eval(source)
		require.NoError(t, err, source)
		kind, err := v.Kind()
		require.NoError(t, err, source)
		require.Equal(t, want, kind, source)

		n, err := ctx.Int32(1)
		require.NoError(t, err, source)
		require.Equal(t, int32(1), int32Of(t, n))
		v, err = ctx.Eval("1")
		require.NoError(t, err, source)
		require.Equal(t, int32(1), int32Of(t, v))
	}
}

func TestValueViews(t *testing.T) {
	_, ctx := newTestContext(t)

	n, err := ctx.Int32(7)
	require.NoError(t, err)
	v := n.AsValue()

	_, ok := v.AsNumber()
	require.True(t, ok)
	_, ok = v.AsString()
	require.False(t, ok)
	_, ok = v.AsBoolean()
	require.False(t, ok)
	_, ok = v.AsObject()
	require.False(t, ok)
	_, err = v.AsFunction()
	require.ErrorIs(t, err, chakracore.ErrNotFunction)

	arr, err := ctx.Eval("[1, 2, 3]")
	require.NoError(t, err)
	obj, ok := arr.AsObject()
	require.True(t, ok)
	length, err := obj.GetNamed("length")
	require.NoError(t, err)
	got, err := chakracore.Number(length).ToInt32()
	require.NoError(t, err)
	require.Equal(t, int32(3), got)

	fn, err := ctx.Eval("(function () { return 1 })")
	require.NoError(t, err)
	_, err = fn.AsFunction()
	require.NoError(t, err)
	require.Equal(t, ctx, fn.Context())
}

// TestValueConversions tests the script coercion rules
func TestValueConversions(t *testing.T) {
	_, ctx := newTestContext(t)

	n, err := ctx.Int32(42)
	require.NoError(t, err)
	s, err := n.AsValue().ToString()
	require.NoError(t, err)
	text, err := s.Text()
	require.NoError(t, err)
	require.Equal(t, "42", text)

	str, err := ctx.String("12.5")
	require.NoError(t, err)
	num, err := str.AsValue().ToNumber()
	require.NoError(t, err)
	f, err := num.ToFloat64()
	require.NoError(t, err)
	require.Equal(t, 12.5, f)

	empty, err := ctx.String("")
	require.NoError(t, err)
	b, err := empty.AsValue().ToBoolean()
	require.NoError(t, err)
	truthy, err := b.ToBool()
	require.NoError(t, err)
	require.False(t, truthy)

	obj, err := str.AsValue().ToObject()
	require.NoError(t, err)
	require.True(t, obj.AsValue().Is(chakracore.KindObject))

	// null has no object form; the failure leaves the context usable
	null, err := ctx.Null()
	require.NoError(t, err)
	_, err = null.ToObject()
	require.ErrorIs(t, err, chakracore.ErrScriptException)

	valueOf, err := ctx.Eval("({ valueOf() { return 9 } })")
	require.NoError(t, err)
	num, err = valueOf.ToNumber()
	require.NoError(t, err)
	got, err := num.ToInt32()
	require.NoError(t, err)
	require.Equal(t, int32(9), got)
}

func TestValueEquality(t *testing.T) {
	_, ctx := newTestContext(t)

	one, err := ctx.Int32(1)
	require.NoError(t, err)
	oneString, err := ctx.String("1")
	require.NoError(t, err)
	oneFloat, err := ctx.Float64(1)
	require.NoError(t, err)

	eq, err := one.AsValue().Equals(oneString)
	require.NoError(t, err)
	require.True(t, eq)

	eq, err = one.AsValue().StrictEquals(oneString)
	require.NoError(t, err)
	require.False(t, eq)

	eq, err = one.AsValue().StrictEquals(oneFloat)
	require.NoError(t, err)
	require.True(t, eq)

	a, err := ctx.Object()
	require.NoError(t, err)
	b, err := ctx.Object()
	require.NoError(t, err)
	eq, err = a.AsValue().StrictEquals(b)
	require.NoError(t, err)
	require.False(t, eq)
	eq, err = a.AsValue().StrictEquals(a)
	require.NoError(t, err)
	require.True(t, eq)
}

func TestValueRetain(t *testing.T) {
	_, ctx := newTestContext(t)

	obj, err := ctx.Object()
	require.NoError(t, err)
	require.NoError(t, obj.AsValue().Retain())
	require.NoError(t, obj.AsValue().Retain())
	require.NoError(t, obj.AsValue().Release())
	require.NoError(t, obj.AsValue().Release())

	// releasing more than retained is an engine usage error
	require.ErrorIs(t, obj.AsValue().Release(), chakracore.ErrInvalidArgument)
}

// TestNoCurrentContext tests that value operations fail without a current context
func TestNoCurrentContext(t *testing.T) {
	rt, err := chakracore.NewRuntime()
	require.NoError(t, err)
	defer rt.Close()
	ctx, err := rt.NewContext()
	require.NoError(t, err)

	_, err = ctx.Int32(1)
	require.ErrorIs(t, err, chakracore.ErrNoCurrentContext)
	_, err = ctx.String("x")
	require.ErrorIs(t, err, chakracore.ErrNoCurrentContext)
	_, err = ctx.Object()
	require.ErrorIs(t, err, chakracore.ErrNoCurrentContext)
	_, err = ctx.Global()
	require.ErrorIs(t, err, chakracore.ErrNoCurrentContext)
	_, err = ctx.Undefined()
	require.ErrorIs(t, err, chakracore.ErrNoCurrentContext)
	_, err = ctx.NewScript("x.js", []byte("1"))
	require.ErrorIs(t, err, chakracore.ErrNoCurrentContext)
	_, err = ctx.Function(chakracore.Thunk(func() {}))
	require.ErrorIs(t, err, chakracore.ErrNoCurrentContext)
	require.Equal(t, abi.CategoryUsage, chakracore.CategoryOf(err))
}
