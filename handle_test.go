package chakracore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buke/chakracore-go/abi"
)

func TestClosureRegistry(t *testing.T) {
	cr := newClosureRegistry()
	fn := Thunk(func() {})

	t.Run("StoreAndLoad", func(t *testing.T) {
		id := cr.Store(&closure{fn: fn})
		require.NotZero(t, id)

		c, ok := cr.Load(id)
		require.True(t, ok)
		require.NotNil(t, c.fn)

		_, ok = cr.Load(id + 100)
		require.False(t, ok)
		require.True(t, cr.Delete(id))
		require.False(t, cr.Delete(id))
	})

	t.Run("DeleteRef", func(t *testing.T) {
		id := cr.Store(&closure{fn: fn})
		cr.Bind(id, abi.ValueRef(42))

		require.True(t, cr.DeleteRef(abi.ValueRef(42)))
		require.False(t, cr.DeleteRef(abi.ValueRef(42)))
		_, ok := cr.Load(id)
		require.False(t, ok)
	})

	t.Run("UniqueTokens", func(t *testing.T) {
		a := cr.Store(&closure{fn: fn})
		b := cr.Store(&closure{fn: fn})
		require.NotEqual(t, a, b)
	})

	t.Run("Clear", func(t *testing.T) {
		cr := newClosureRegistry()
		for i := 0; i < 5; i++ {
			id := cr.Store(&closure{fn: fn})
			cr.Bind(id, abi.ValueRef(i+1))
		}
		require.Equal(t, 5, cr.Count())
		require.Equal(t, 5, cr.Clear())
		require.Equal(t, 0, cr.Count())
		require.False(t, cr.DeleteRef(abi.ValueRef(1)))
		require.Equal(t, 0, cr.Clear())
	})
}

func TestClosureRegistryConcurrency(t *testing.T) {
	cr := newClosureRegistry()
	const workers, perWorker = 8, 100

	var wg sync.WaitGroup
	ids := make(chan uintptr, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := cr.Store(&closure{fn: Thunk(func() {})})
				_, ok := cr.Load(id)
				assert.True(t, ok)
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uintptr]bool)
	for id := range ids {
		require.False(t, seen[id], "token %d issued twice", id)
		seen[id] = true
	}
	require.Equal(t, workers*perWorker, cr.Count())
}
