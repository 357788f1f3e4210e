// Package objspace is an in-process reference implementation of the quill
// runtime boundary: a reference-counted object space with none/bool/int/
// float/string scalars, fixed-length lists, insertion-ordered dicts,
// host-provided callables and attribute-bearing objects.
//
// It implements execution of nothing — callables are plain Go functions —
// but it honors the full boundary contract: thread-safe reference counting,
// shared immortal sentinels, a pending-error channel, and insertion-ordered
// mappings with last-write-wins key semantics.
//
//	vm, err := objspace.NewVM()
//	if err != nil {
//	    ...
//	}
//	defer vm.Close()
package objspace
