package quill

// Handle is a host-side reference to a runtime object.
//
// A handle is either borrowed or owned. A borrowed handle is valid only while
// the token that produced it is live; using it later panics. An owned handle
// carries its own reference-count unit and stays valid across tokens until
// Close drops it.
type Handle struct {
	ref    Ref
	rt     Runtime
	tok    *Token // set for borrowed handles
	owned  bool
	closed bool
}

// newBorrowed wraps a freshly constructed reference in a borrowed handle.
// The token's scratch set takes ownership of the reference.
func newBorrowed(tok *Token, ref Ref) *Handle {
	tok.check()
	tok.adopt(ref)
	return &Handle{ref: ref, rt: tok.vm.rt, tok: tok}
}

// borrowView wraps a reference some other object keeps alive (a list element,
// a dict value). No ownership changes hands.
func borrowView(tok *Token, ref Ref) *Handle {
	tok.check()
	return &Handle{ref: ref, rt: tok.vm.rt, tok: tok}
}

// newOwned wraps a reference the caller already owns. The handle's Close
// drops that unit.
func newOwned(rt Runtime, ref Ref) *Handle {
	return &Handle{ref: ref, rt: rt, owned: true}
}

// guard panics when the handle may no longer be used: a borrowed handle
// whose token scope ended, or an owned handle that was closed.
func (h *Handle) guard() {
	if h == nil {
		panic("quill: nil handle")
	}
	if h.owned {
		if h.closed {
			panic("quill: use of closed handle")
		}
		return
	}
	if !h.tok.valid() {
		panic("quill: borrowed handle used after its token was released")
	}
}

// Ref returns the underlying runtime reference.
func (h *Handle) Ref() Ref {
	h.guard()
	return h.ref
}

// Owned reports whether the handle carries its own reference-count unit.
func (h *Handle) Owned() bool {
	return h.owned
}

// Kind returns the runtime kind of the object. tok proves interpreter access;
// the answer always comes from the runtime the handle belongs to.
func (h *Handle) Kind(tok *Token) Kind {
	h.guard()
	tok.check()
	return h.rt.KindOf(h.ref)
}

// Promote returns an owned handle to the same object, taking one new
// reference-count unit. The result is independent of any token. Promoting an
// owned handle just takes another unit.
//
// IncRef is safe without interpreter access, so Promote only requires the
// borrowed handle's own token to still be live.
func (h *Handle) Promote() *Handle {
	h.guard()
	h.rt.IncRef(h.ref)
	return newOwned(h.rt, h.ref)
}

// Attr looks up a named attribute on the object, returning a borrowed view
// of it. Missing attributes yield a MissingAttributeError.
func (h *Handle) Attr(tok *Token, name string) (*Handle, error) {
	h.guard()
	ref, ok := tok.rt().GetAttr(h.ref, name)
	if !ok {
		return nil, &MissingAttributeError{Name: name}
	}
	return borrowView(tok, ref), nil
}

// Close drops an owned handle's reference-count unit. It is idempotent and
// requires no token: the runtime's reference counting is thread-safe.
// Closing a borrowed handle is a no-op; its object belongs to the token.
func (h *Handle) Close() error {
	if h == nil || !h.owned || h.closed {
		return nil
	}
	h.closed = true
	h.rt.DecRef(h.ref)
	return nil
}
