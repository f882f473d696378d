// Package threadid identifies the calling OS thread. Callers that need a stable answer
// across calls must pin their goroutine with runtime.LockOSThread.
package threadid

// ID is an OS thread identifier.
type ID uint64

// Current returns the identifier of the calling OS thread.
func Current() ID {
	return current()
}
