package quill

import (
	"fmt"
	"math"
	"reflect"
)

// ObjectBorrower is implemented by host types that know how to convert
// themselves into a runtime object without being consumed.
type ObjectBorrower interface {
	BorrowObject(tok *Token) (*Handle, error)
}

// ObjectConsumer is implemented by host types that should be moved into the
// runtime rather than copied, such as wrappers around externally counted
// resources. IntoObject prefers it over ObjectBorrower.
type ObjectConsumer interface {
	IntoObject(tok *Token) (*Handle, error)
}

// ToObject converts a host value to a borrowed handle. The value is not
// consumed and can be reused by the caller.
//
// Directly convertible: nil, booleans, all integer widths, floats, strings,
// []byte (as a string object), existing handles, and any type implementing
// ObjectBorrower. Slices, arrays and maps of convertible values convert
// recursively, preserving order for sequences.
func ToObject(tok *Token, v any) (*Handle, error) {
	rt := tok.rt()

	switch val := v.(type) {
	case nil:
		return newBorrowed(tok, rt.None()), nil
	case *Handle:
		val.guard()
		return val, nil
	case bool:
		return newBorrowed(tok, rt.NewBool(val)), nil
	case int:
		return newBorrowed(tok, rt.NewInt(int64(val))), nil
	case int8:
		return newBorrowed(tok, rt.NewInt(int64(val))), nil
	case int16:
		return newBorrowed(tok, rt.NewInt(int64(val))), nil
	case int32:
		return newBorrowed(tok, rt.NewInt(int64(val))), nil
	case int64:
		return newBorrowed(tok, rt.NewInt(val)), nil
	case uint8:
		return newBorrowed(tok, rt.NewInt(int64(val))), nil
	case uint16:
		return newBorrowed(tok, rt.NewInt(int64(val))), nil
	case uint32:
		return newBorrowed(tok, rt.NewInt(int64(val))), nil
	case uint, uint64, uintptr:
		u := reflect.ValueOf(val).Uint()
		if u > math.MaxInt64 {
			return nil, &OverflowError{HostType: "int", Value: fmt.Sprint(u)}
		}
		return newBorrowed(tok, rt.NewInt(int64(u))), nil
	case float32:
		return newBorrowed(tok, rt.NewFloat(float64(val))), nil
	case float64:
		return newBorrowed(tok, rt.NewFloat(val)), nil
	case string:
		return newBorrowed(tok, rt.NewString(val)), nil
	case []byte:
		return newBorrowed(tok, rt.NewString(string(val))), nil
	case ObjectBorrower:
		return val.BorrowObject(tok)
	}

	// Reflection fallback for container types.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		refs := make([]Ref, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			h, err := ToObject(tok, rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			refs[i] = h.ref
		}
		if len(refs) == 0 {
			return borrowView(tok, rt.EmptyList()), nil
		}
		return newBorrowed(tok, rt.NewList(refs)), nil
	case reflect.Map:
		keys := make([]Ref, 0, rv.Len())
		vals := make([]Ref, 0, rv.Len())
		i := 0
		iter := rv.MapRange()
		for iter.Next() {
			kh, err := ToObject(tok, iter.Key().Interface())
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			if !rt.IsHashable(kh.ref) {
				return nil, &UnhashableKeyError{Kind: rt.KindOf(kh.ref), Index: i}
			}
			vh, err := ToObject(tok, iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("value for key %v: %w", iter.Key(), err)
			}
			keys = append(keys, kh.ref)
			vals = append(vals, vh.ref)
			i++
		}
		if len(keys) == 0 {
			return borrowView(tok, rt.EmptyDict()), nil
		}
		return newBorrowed(tok, rt.NewDict(keys, vals)), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return newBorrowed(tok, rt.None()), nil
		}
		return ToObject(tok, rv.Elem().Interface())
	}
	return nil, fmt.Errorf("quill: no conversion for Go type %T", v)
}

// IntoObject converts a host value to an owned handle, consuming it. Types
// implementing ObjectConsumer get to move their resources into the runtime;
// everything else converts like ToObject and the result is promoted.
func IntoObject(tok *Token, v any) (*Handle, error) {
	if c, ok := v.(ObjectConsumer); ok {
		h, err := c.IntoObject(tok)
		if err != nil {
			return nil, err
		}
		if !h.owned {
			return h.Promote(), nil
		}
		return h, nil
	}
	h, err := ToObject(tok, v)
	if err != nil {
		return nil, err
	}
	return h.Promote(), nil
}
