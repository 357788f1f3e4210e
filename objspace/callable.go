package objspace

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/quill-lang/quill"
)

// CallFunc is the Go side of an object-space callable.
//
// The returned reference must be one the function owns: constructors hand
// out owned references, and to return one of the arguments use
// CallCtx.Retain. Returning the zero Ref with a nil error means none.
// A non-nil error becomes the space's pending error, which the bridge
// forwards opaquely.
type CallFunc func(c *CallCtx) (quill.Ref, error)

// CallCtx carries one invocation's arguments.
type CallCtx struct {
	sp     *Space
	args   []quill.Ref
	kwargs map[string]quill.Ref
}

// Space returns the object space, for constructing the result.
func (c *CallCtx) Space() *Space { return c.sp }

// NArgs returns the number of positional arguments.
func (c *CallCtx) NArgs() int { return len(c.args) }

// Arg returns the i-th positional argument. The reference stays owned by the
// argument list.
func (c *CallCtx) Arg(i int) quill.Ref {
	if i < 0 || i >= len(c.args) {
		return 0
	}
	return c.args[i]
}

// Kwarg looks up a string-keyed keyword argument.
func (c *CallCtx) Kwarg(name string) (quill.Ref, bool) {
	r, ok := c.kwargs[name]
	return r, ok
}

// NKwargs returns the number of keyword arguments.
func (c *CallCtx) NKwargs() int { return len(c.kwargs) }

// Retain takes a new reference to r so it can be returned from the call.
func (c *CallCtx) Retain(r quill.Ref) quill.Ref {
	c.sp.IncRef(r)
	return r
}

// NewCallable registers a Go function as a callable object.
func (s *Space) NewCallable(fn CallFunc) quill.Ref {
	return s.alloc(&object{kind: quill.KindCallable, fn: fn})
}

// NewObject creates an empty attribute-bearing object. Populate it with
// SetAttr; method attributes are ordinary callables.
func (s *Space) NewObject() quill.Ref {
	return s.alloc(&object{kind: quill.KindObject, attrs: linkedhashmap.New()})
}

// SetAttr binds a named attribute, replacing any previous binding. The
// object takes its own reference to the value.
func (s *Space) SetAttr(obj quill.Ref, name string, val quill.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.objects[obj]
	if o == nil || o.attrs == nil {
		return
	}
	if prev, found := o.attrs.Get(name); found {
		s.decLocked(prev.(quill.Ref))
	}
	s.incLocked(val)
	o.attrs.Put(name, val)
}
