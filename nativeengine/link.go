//go:build chakracore && cgo

package nativeengine

// #cgo LDFLAGS: -lChakraCore
// #cgo linux LDFLAGS: -lstdc++ -lm
import "C"
