package quill

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces bridge-level events (lock traffic, call failures).
func tracer() tracing.Trace {
	return tracing.Select("quill")
}

// VM wraps an embedded runtime together with the exclusive-access lock that
// guards it. The runtime is a single-threaded resource: only one goroutine
// may be inside it at a time, and every operation on runtime objects requires
// a live Token proving the caller currently holds access.
//
//	vm, err := objspace.NewVM()
//	if err != nil { ... }
//	defer vm.Close()
//
//	err = vm.With(func(tok *quill.Token) error {
//	    h, err := quill.ToObject(tok, 42)
//	    ...
//	})
type VM struct {
	rt     Runtime
	mu     sync.Mutex
	holder atomic.Uint64 // goroutine id currently holding the lock, 0 if none
	depth  int           // reentrant acquisition depth, touched only by holder
	closed atomic.Bool
}

// New wraps rt in a VM. The VM takes responsibility for closing rt.
func New(rt Runtime) *VM {
	return &VM{rt: rt}
}

// Runtime returns the wrapped runtime boundary. Callers must only touch it
// while holding a token; prefer the Token and Handle APIs.
func (vm *VM) Runtime() Runtime {
	return vm.rt
}

// With acquires exclusive access to the embedded runtime, blocking until it
// is available, and runs fn with a token proving that access. The token is
// invalidated when fn returns; using it afterwards panics.
//
// With is reentrant: calling it again on the same goroutine while access is
// held runs fn immediately with a nested token, and only the outermost
// return releases the lock.
//
// All temporary objects created through the token are released with it.
func (vm *VM) With(fn func(tok *Token) error) error {
	if vm.closed.Load() {
		return ErrInterpreterUnavailable
	}
	id := goid()
	if vm.holder.Load() == id {
		// Nested acquisition on the holding goroutine.
		vm.depth++
		tok := &Token{vm: vm, live: true, gid: id}
		defer func() {
			tok.release()
			vm.depth--
		}()
		return fn(tok)
	}

	vm.mu.Lock()
	if vm.closed.Load() {
		vm.mu.Unlock()
		return ErrInterpreterUnavailable
	}
	vm.holder.Store(id)
	vm.depth = 1
	tracer().Debugf("goroutine %d acquired interpreter access", id)

	tok := &Token{vm: vm, live: true, gid: id}
	defer func() {
		tok.release()
		vm.depth = 0
		vm.holder.Store(0)
		tracer().Debugf("goroutine %d released interpreter access", id)
		vm.mu.Unlock()
	}()
	return fn(tok)
}

// Close tears down the embedded runtime. It blocks until no goroutine holds
// access, then marks the VM unavailable: every later With returns
// ErrInterpreterUnavailable. Close must not be called from inside With.
func (vm *VM) Close() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed.Swap(true) {
		return nil
	}
	return vm.rt.Close()
}

// Token is proof that the calling goroutine currently holds exclusive access
// to the embedded runtime. Tokens are created by VM.With, are only valid
// inside the closure they were handed to, and must not be stored or passed
// to another goroutine.
//
// Objects created through a token are scratch: the token owns one reference
// to each and drops it when the token's scope ends. Promote a Handle to keep
// an object alive beyond that.
type Token struct {
	vm      *VM
	live    bool
	gid     uint64 // goroutine the token was issued to
	scratch []Ref
}

// check panics when the token's scope has already ended or when the token is
// used from a goroutine other than the one it was issued to. Borrowed handles
// funnel every access through here, so stale reads fail loudly instead of
// touching freed objects, and a smuggled token cannot reenter the runtime
// concurrently with its holder.
func (t *Token) check() {
	if t == nil || !t.live {
		panic("quill: access token used outside its scope")
	}
	if goid() != t.gid {
		panic("quill: access token used from a foreign goroutine")
	}
}

// valid reports whether the token's scope is still open.
func (t *Token) valid() bool {
	return t != nil && t.live
}

// rt returns the runtime after validating the token.
func (t *Token) rt() Runtime {
	t.check()
	return t.vm.rt
}

// adopt registers a freshly constructed reference with the token's scratch
// set. The token owns one unit of it until release.
func (t *Token) adopt(ref Ref) {
	t.scratch = append(t.scratch, ref)
}

func (t *Token) release() {
	rt := t.vm.rt
	for i := len(t.scratch) - 1; i >= 0; i-- {
		rt.DecRef(t.scratch[i])
	}
	t.scratch = nil
	t.live = false
}

// Borrow wraps a runtime reference the caller knows is alive in a borrowed
// handle. No ownership changes hands; promote the handle to keep the object.
func (t *Token) Borrow(ref Ref) *Handle {
	return borrowView(t, ref)
}

// None returns a borrowed handle to the runtime's none singleton.
func (t *Token) None() *Handle {
	return newBorrowed(t, t.rt().None())
}

// Bool returns a borrowed handle to a boolean object.
func (t *Token) Bool(v bool) *Handle {
	return newBorrowed(t, t.rt().NewBool(v))
}

// Int returns a borrowed handle to an integer object.
func (t *Token) Int(v int64) *Handle {
	return newBorrowed(t, t.rt().NewInt(v))
}

// Float returns a borrowed handle to a float object.
func (t *Token) Float(v float64) *Handle {
	return newBorrowed(t, t.rt().NewFloat(v))
}

// String returns a borrowed handle to a string object.
func (t *Token) String(v string) *Handle {
	return newBorrowed(t, t.rt().NewString(v))
}

// goid returns the current goroutine's id, parsed from the stack header.
// There is no library equivalent; the header format ("goroutine N [state]:")
// has been stable across every Go release.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	const prefix = len("goroutine ")
	var id uint64
	for _, c := range buf[prefix:n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
