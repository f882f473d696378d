package chakracore

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/buke/chakracore-go/abi"
)

// Script is a source buffer registered with the engine as an external ArrayBuffer. The
// buffer is owned by the host: the engine reads it in place, and Close or the runtime's
// Close releases it exactly once. The buffer and name handles hold an engine reference
// while the script is open; they do not count as retained values.
type Script struct {
	ctx        *Context
	file       string
	name       String
	buffer     Value
	cookie     abi.SourceContext
	attributes abi.ParseScriptAttributes

	mu      sync.Mutex
	source  []byte // source plus a trailing NUL
	running int
	closed  bool
}

// NewScript copies source into a NUL-terminated host buffer and registers it with the
// engine. name becomes the script's source URL. Sources containing NUL bytes are rejected.
func (ctx *Context) NewScript(name string, source []byte) (*Script, error) {
	engine, err := ctx.engine()
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(source, 0); i >= 0 {
		return nil, errors.Wrapf(ErrEmbeddedNull, "script %q at byte %d", name, i)
	}
	url, err := ctx.String(name)
	if err != nil {
		return nil, err
	}

	n := len(source)
	buf := allocBuffer(n + 1)
	copy(buf, source)
	buf[n] = 0

	s := &Script{
		ctx:    ctx,
		file:   name,
		name:   url,
		cookie: abi.SourceContext(ctx.runtime.cookies.Add(1)),
		source: buf,
	}
	var ref abi.ValueRef
	if err := classify("create external array buffer", engine.CreateExternalArrayBuffer(buf[:n], nil, 0, &ref)); err != nil {
		freeBuffer(buf)
		return nil, err
	}
	if err := classify("add reference", engine.AddRef(ref, nil)); err != nil {
		freeBuffer(buf)
		return nil, err
	}
	if err := classify("add reference", engine.AddRef(url.ref, nil)); err != nil {
		_ = engine.Release(ref, nil)
		freeBuffer(buf)
		return nil, err
	}
	s.buffer = Value{ctx: ctx, ref: ref}

	ctx.runtime.trackScript(s)
	return s, nil
}

// Name returns the source URL of the script.
func (s *Script) Name() string {
	return s.file
}

// Context returns the context the script was created in.
func (s *Script) Context() *Context {
	return s.ctx
}

// Run executes the script in the current context. See Runtime.Run.
func (s *Script) Run() (Value, error) {
	return s.ctx.runtime.Run(s)
}

// Close releases the source buffer. When called while the script is running, from a host
// function, the release happens once the run returns. Close is idempotent.
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.running == 0 {
		s.freeLocked()
	}
	return nil
}

// acquire marks a run in progress.
func (s *Script) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.WithStack(ErrScriptClosed)
	}
	s.running++
	return nil
}

func (s *Script) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running--
	if s.running == 0 && s.closed {
		s.freeLocked()
	}
}

// dispose releases the buffer when the runtime is closed.
func (s *Script) dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.freeLocked()
}

func (s *Script) freeLocked() {
	if s.source == nil {
		return
	}
	// a disposed runtime has already dropped every handle
	if r := s.ctx.runtime; !r.closed.Load() {
		for _, ref := range []abi.ValueRef{s.buffer.ref, s.name.ref} {
			if err := classify("release reference", r.engine.Release(ref, nil)); err != nil {
				r.log.Warn("script handle release failed", zap.String("script", s.file), zap.Error(err))
			}
		}
	}
	freeBuffer(s.source)
	s.source = nil
	s.ctx.runtime.untrackScript(s)
}
