package quill

import "fmt"

// NewList builds a runtime sequence from heterogeneous host values, each
// borrow-converted in declared order. The result has exactly len(items)
// elements; nothing is reordered or deduplicated. Zero items returns the
// runtime's shared empty-sequence sentinel without allocating.
func NewList(tok *Token, items ...any) (*Handle, error) {
	rt := tok.rt()
	if len(items) == 0 {
		return borrowView(tok, rt.EmptyList()), nil
	}
	refs := make([]Ref, len(items))
	for i, item := range items {
		h, err := ToObject(tok, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		refs[i] = h.ref
	}
	return newBorrowed(tok, rt.NewList(refs)), nil
}

// ListFromSlice builds a runtime sequence from a homogeneous host slice,
// preserving element order.
func ListFromSlice[T any](tok *Token, items []T) (*Handle, error) {
	rt := tok.rt()
	if len(items) == 0 {
		return borrowView(tok, rt.EmptyList()), nil
	}
	refs := make([]Ref, len(items))
	for i, item := range items {
		h, err := ToObject(tok, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		refs[i] = h.ref
	}
	return newBorrowed(tok, rt.NewList(refs)), nil
}
