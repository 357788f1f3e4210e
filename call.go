package quill

// Call invokes a callable object with an optional positional sequence and an
// optional keyword mapping. A nil args handle means the empty sequence; a nil
// kwargs handle (or a none object) means no keyword arguments, which is not
// an error.
//
// The callability of the target is checked before anything is allocated on
// the runtime side. A runtime-side error comes back as a RaisedError with an
// opaque description; the bridge never retries or interprets it.
//
// The result is always a fresh owned handle: the callee's return value must
// outlive the call, so it is never borrowed. The caller must Close it.
func Call(tok *Token, callable, args, kwargs *Handle) (*Handle, error) {
	rt := tok.rt()
	callable.guard()

	if !rt.IsCallable(callable.ref) {
		return nil, &NotCallableError{Kind: rt.KindOf(callable.ref)}
	}

	argsRef := rt.EmptyList()
	if args != nil {
		args.guard()
		if k := rt.KindOf(args.ref); k != KindList {
			return nil, &TypeMismatchError{Expected: KindList, Actual: k, HostType: "positional arguments"}
		}
		argsRef = args.ref
	}
	var kwargsRef Ref
	if kwargs != nil {
		kwargs.guard()
		switch k := rt.KindOf(kwargs.ref); k {
		case KindNone:
			// Explicit "no keyword arguments".
		case KindDict:
			kwargsRef = kwargs.ref
		default:
			return nil, &TypeMismatchError{Expected: KindDict, Actual: k, HostType: "keyword arguments"}
		}
	}

	result, ok := rt.Invoke(callable.ref, argsRef, kwargsRef)
	if !ok {
		desc, _ := rt.LastError()
		rt.ClearError()
		tracer().Debugf("call raised: %s", desc)
		return nil, &RaisedError{Description: desc}
	}
	return newOwned(rt, result), nil
}

// Call0 invokes a callable with no arguments at all.
func Call0(tok *Token, callable *Handle) (*Handle, error) {
	return Call(tok, callable, nil, nil)
}

// Call1 invokes a callable with positional arguments converted from host
// values and no keyword arguments. The target's callability is checked
// before any argument is converted, so a bad target costs no allocation.
func Call1(tok *Token, callable *Handle, items ...any) (*Handle, error) {
	rt := tok.rt()
	callable.guard()
	if !rt.IsCallable(callable.ref) {
		return nil, &NotCallableError{Kind: rt.KindOf(callable.ref)}
	}
	args, err := NewList(tok, items...)
	if err != nil {
		return nil, err
	}
	return Call(tok, callable, args, nil)
}

// CallMethod looks up a named attribute on obj and invokes it. A missing
// attribute is a MissingAttributeError; an attribute that exists but is not
// callable is a NotCallableError. The distinction matters to callers.
func CallMethod(tok *Token, obj *Handle, name string, args, kwargs *Handle) (*Handle, error) {
	rt := tok.rt()
	obj.guard()

	method, ok := rt.GetAttr(obj.ref, name)
	if !ok {
		return nil, &MissingAttributeError{Name: name}
	}
	return Call(tok, borrowView(tok, method), args, kwargs)
}
