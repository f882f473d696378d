package threadid

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentStableWhileLocked(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	id := Current()
	require.NotZero(t, id)
	for i := 0; i < 100; i++ {
		runtime.Gosched()
		require.Equal(t, id, Current())
	}
}

func TestCurrentDistinctThreads(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skip("thread ids are not distinguished on " + runtime.GOOS)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	mine := Current()

	var other ID
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// a locked goroutine always runs on a thread of its own
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		other = Current()
	}()
	wg.Wait()

	require.NotEqual(t, mine, other)
}
