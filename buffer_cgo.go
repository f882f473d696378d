//go:build cgo

package chakracore

/*
#include <stdlib.h>
*/
import "C"
import "unsafe"

// allocBuffer returns n zeroed bytes on the C heap, so the engine may keep the pointer
// across calls without violating cgo pointer rules. Release with freeBuffer.
func allocBuffer(n int) []byte {
	p := C.calloc(C.size_t(n), 1)
	if p == nil {
		panic("chakracore: out of memory allocating script buffer")
	}
	return unsafe.Slice((*byte)(p), n)
}

func freeBuffer(b []byte) {
	if cap(b) > 0 {
		C.free(unsafe.Pointer(unsafe.SliceData(b)))
	}
}
