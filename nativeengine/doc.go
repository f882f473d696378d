/*
Package nativeengine implements the abi.Engine function table over the ChakraCore shared
library through cgo. It is only built with the "chakracore" build tag and cgo enabled; the
library and its headers (ChakraCore.h) must be on the compiler and linker search paths.

	go build -tags chakracore ./...

Buffers passed to CreateExternalArrayBuffer must live in C memory: the engine keeps the
pointer after the call returns.
*/
package nativeengine
