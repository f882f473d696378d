package chakracore

import (
	"bytes"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// String is a Value known to be a string.
type String Value

// AsValue implements Valuer.
func (s String) AsValue() Value {
	return Value(s)
}

// Text returns the string contents.
func (s String) Text() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bytes returns the UTF-8 encoding of the string. The engine is asked for the encoded size
// first, then copies into a buffer one byte larger; the copy must match the measured size and
// leave the trailing NUL intact. Strings with embedded NUL characters are rejected.
func (s String) Bytes() ([]byte, error) {
	engine, err := Value(s).engine("copy string")
	if err != nil {
		return nil, err
	}

	var size int
	if err := classify("copy string", engine.CopyString(s.ref, nil, &size)); err != nil {
		return nil, err
	}
	buf := make([]byte, size+1)
	var written int
	if err := classify("copy string", engine.CopyString(s.ref, buf, &written)); err != nil {
		return nil, err
	}

	if written != size {
		return nil, errors.Wrapf(ErrLengthMismatch, "measured %d bytes, copied %d", size, written)
	}
	if buf[size] != 0 {
		return nil, errors.WithStack(ErrMissingTerminator)
	}
	buf = buf[:size]
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return nil, errors.Wrapf(ErrEmbeddedNull, "at byte %d", i)
	}
	if !utf8.Valid(buf) {
		return nil, errors.WithStack(ErrInvalidUTF8)
	}
	return buf, nil
}

// Length returns the length of the string in UTF-16 code units, as seen by scripts.
func (s String) Length() (int, error) {
	engine, err := Value(s).engine("get string length")
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.ctx.runtime.status("get string length", engine.GetStringLength(s.ref, &n)); err != nil {
		return 0, err
	}
	return n, nil
}
