package chakracore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buke/chakracore-go"
)

// TestScript tests creating, running and closing a script
func TestScript(t *testing.T) {
	_, ctx := newTestContext(t)

	script, err := ctx.NewScript("answer.js", []byte("var calls = (typeof calls === 'number' ? calls : 0) + 1; calls * 21"))
	require.NoError(t, err)
	require.Equal(t, "answer.js", script.Name())
	require.Equal(t, ctx, script.Context())

	v, err := script.Run()
	require.NoError(t, err)
	require.Equal(t, int32(21), int32Of(t, v))

	// a script can be run more than once
	v, err = script.Run()
	require.NoError(t, err)
	require.Equal(t, int32(42), int32Of(t, v))

	require.NoError(t, script.Close())
	require.NoError(t, script.Close(), "close is idempotent")
	_, err = script.Run()
	require.ErrorIs(t, err, chakracore.ErrScriptClosed)
}

func TestScriptEmpty(t *testing.T) {
	_, ctx := newTestContext(t)

	script, err := ctx.NewScript("empty.js", nil)
	require.NoError(t, err)
	defer script.Close()

	v, err := script.Run()
	require.NoError(t, err)
	require.True(t, v.Is(chakracore.KindUndefined))
}

func TestScriptEmbeddedNull(t *testing.T) {
	_, ctx := newTestContext(t)

	_, err := ctx.NewScript("nul.js", []byte("1;\x002"))
	require.ErrorIs(t, err, chakracore.ErrEmbeddedNull)
}

func TestScriptUnicode(t *testing.T) {
	_, ctx := newTestContext(t)

	script, err := ctx.NewScript("unicode.js", []byte("'héllo ' + '👋'"))
	require.NoError(t, err)
	defer script.Close()

	v, err := script.Run()
	require.NoError(t, err)
	require.Equal(t, "héllo 👋", textOf(t, v))
}

// TestScriptSourceCopied tests that the script owns a copy of its source
func TestScriptSourceCopied(t *testing.T) {
	_, ctx := newTestContext(t)

	source := []byte("6 * 7")
	script, err := ctx.NewScript("copy.js", source)
	require.NoError(t, err)
	defer script.Close()
	copy(source, "0 * 0")

	v, err := script.Run()
	require.NoError(t, err)
	require.Equal(t, int32(42), int32Of(t, v))
}

// TestScriptCloseWhileRunning tests closing a script from a host function it calls
func TestScriptCloseWhileRunning(t *testing.T) {
	_, ctx := newTestContext(t)

	var script *chakracore.Script
	register(t, ctx, "closeMe", chakracore.Thunk(func() {
		require.NoError(t, script.Close())
	}))

	var err error
	script, err = ctx.NewScript("reentrant.js", []byte("closeMe(); 5"))
	require.NoError(t, err)

	v, err := script.Run()
	require.NoError(t, err)
	require.Equal(t, int32(5), int32Of(t, v))

	_, err = script.Run()
	require.ErrorIs(t, err, chakracore.ErrScriptClosed)
}

func TestScriptReleasedWithRuntime(t *testing.T) {
	rt, err := chakracore.NewRuntime()
	require.NoError(t, err)
	ctx, err := rt.NewContext()
	require.NoError(t, err)

	var scripts []*chakracore.Script
	require.NoError(t, ctx.With(func(ctx *chakracore.Context) error {
		for _, name := range []string{"a.js", "b.js", "c.js"} {
			s, err := ctx.NewScript(name, []byte("1"))
			if err != nil {
				return err
			}
			scripts = append(scripts, s)
		}
		return scripts[0].Close()
	}))

	require.NoError(t, rt.Close())
	for _, s := range scripts {
		require.NoError(t, s.Close())
		_, err := s.Run()
		require.ErrorIs(t, err, chakracore.ErrRuntimeClosed)
	}
}

func TestScriptDistinctRuns(t *testing.T) {
	rt, ctx := newTestContext(t)

	first, err := ctx.NewScript("first.js", []byte("throw new TypeError('first')"))
	require.NoError(t, err)
	defer first.Close()
	second, err := ctx.NewScript("second.js", []byte("'second'"))
	require.NoError(t, err)
	defer second.Close()

	_, err = rt.Run(first)
	require.ErrorIs(t, err, chakracore.ErrScriptException)
	v, err := rt.Run(second)
	require.NoError(t, err)
	require.Equal(t, "second", textOf(t, v))
}

// TestScriptCreatedInCallback tests that a script made by a host function stays usable
// after the function returns and a collection runs
func TestScriptCreatedInCallback(t *testing.T) {
	rt, ctx := newTestContext(t)

	var script *chakracore.Script
	register(t, ctx, "compile", chakracore.Action(func(call *chakracore.Call) {
		var err error
		script, err = call.Context().NewScript("inner.js", []byte("'kept'"))
		require.NoError(t, err)
	}))
	_, err := ctx.Eval("compile()")
	require.NoError(t, err)
	require.NotNil(t, script)

	require.NoError(t, rt.CollectGarbage())
	v, err := script.Run()
	require.NoError(t, err)
	require.Equal(t, "kept", textOf(t, v))
	require.Equal(t, "inner.js", script.Name())

	// the open script does not keep the runtime from closing at cleanup
}
