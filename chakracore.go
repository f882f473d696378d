/*
Package chakracore is a memory-safe object model over the ChakraCore JSRT ABI.

A Runtime owns an isolated engine heap, a Context is a script realm inside it, and Value is
a typed view of an engine-managed script value. Every engine status is checked and mapped
to a Go error; nothing in this package panics on an engine failure except where noted.

The engine tracks one current context per OS thread. Context.Enter pins the calling
goroutine to its thread until Context.Exit, so all work on a context should happen inside
Context.With or between Enter and Exit on the same goroutine.

By default the pure Go engine from package gojaengine is used. Building with the
"chakracore" tag (and cgo) binds the ChakraCore shared library instead.
*/
package chakracore
