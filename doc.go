// Package quill is an embedding bridge between typed Go code and a
// dynamically-typed, reference-counted interpreter hosted in-process.
//
// # Overview
//
// The interpreter is a single-threaded resource: its object graph may only be
// touched by one goroutine at a time, inside a window of exclusive access.
// quill makes that discipline explicit in the API:
//
//   - A [Token] proves the caller currently holds exclusive access. It is
//     handed out by [VM.With], is valid only inside that closure, and every
//     object operation requires one.
//   - A [Handle] is a reference to a runtime object. Borrowed handles live
//     only as long as the token that produced them; owned handles carry their
//     own reference-count unit and survive across access windows.
//   - [ToObject], [IntoObject] and [Extract] convert between Go values and
//     runtime objects.
//   - [NewList] and [NewDict] assemble positional and keyword argument
//     containers; [Call] and [CallMethod] perform invocations and propagate
//     runtime-side errors opaquely.
//
// # Quick start
//
//	vm, err := objspace.NewVM()
//	if err != nil {
//	    ...
//	}
//	defer vm.Close()
//
//	err = vm.With(func(tok *quill.Token) error {
//	    args, err := quill.NewList(tok, "hello", 42)
//	    if err != nil {
//	        return err
//	    }
//	    result, err := quill.Call(tok, fn, args, nil)
//	    if err != nil {
//	        return err
//	    }
//	    defer result.Close()
//	    n, err := quill.Extract[int64](tok, result)
//	    ...
//	})
//
// # Ownership
//
// Objects created through a token are scratch: the token releases them when
// its scope ends. To keep an object beyond the access window, promote its
// handle:
//
//	kept = h.Promote() // owned, valid across tokens
//	defer kept.Close()
//
// Call results are always owned, since a return value must outlive the call.
//
// # The runtime boundary
//
// quill does not implement an interpreter. It talks to any object space
// satisfying the [Runtime] interface: reference counting, object
// construction, sequence and mapping assembly, attribute lookup, invocation,
// and an opaque pending-error channel. The objspace subpackage provides an
// in-process reference implementation used throughout the tests.
package quill
