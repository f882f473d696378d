//go:build !cgo

package chakracore

// allocBuffer returns n zeroed bytes for a script source buffer.
func allocBuffer(n int) []byte {
	return make([]byte, n)
}

func freeBuffer([]byte) {}
