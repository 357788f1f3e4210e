package quill

import (
	"fmt"
	"math"
	"reflect"
)

// Extractor is implemented by host types that recover themselves from a
// runtime object. Extract calls it on a pointer to the zero value.
type Extractor interface {
	ExtractObject(tok *Token, h *Handle) error
}

// Extract attempts to recover a host value of type T from a runtime object.
// It never mutates the object.
//
// Supported types: booleans, all integer and float widths, strings, slices
// and maps of supported types, pointers (a none object extracts to nil), any
// (which picks the natural host type for the object's kind), *Handle (which
// returns the handle itself), and types implementing Extractor.
//
// A kind mismatch yields a TypeMismatchError. Numeric narrowing that would
// lose information yields an OverflowError instead of truncating. Container
// extraction stops at the first failing element and reports its position.
func Extract[T any](tok *Token, h *Handle) (T, error) {
	var zero T
	tok.check()
	h.guard()

	if ex, ok := any(&zero).(Extractor); ok {
		if err := ex.ExtractObject(tok, h); err != nil {
			var z T
			return z, err
		}
		return zero, nil
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	if t == reflect.TypeOf((**Handle)(nil)).Elem() {
		return any(h).(T), nil
	}
	rv, err := extractValue(tok, h.ref, t)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// extractValue is the recursive worker behind Extract.
func extractValue(tok *Token, ref Ref, t reflect.Type) (reflect.Value, error) {
	rt := tok.rt()

	switch t.Kind() {
	case reflect.Bool:
		b, ok := rt.BoolValue(ref)
		if !ok {
			return reflect.Value{}, mismatch(rt, ref, KindBool, t)
		}
		return reflect.ValueOf(b).Convert(t), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := rt.IntValue(ref)
		if !ok {
			return reflect.Value{}, mismatch(rt, ref, KindInt, t)
		}
		v := reflect.New(t).Elem()
		if v.OverflowInt(i) {
			return reflect.Value{}, &OverflowError{HostType: t.String(), Value: fmt.Sprint(i)}
		}
		v.SetInt(i)
		return v, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := rt.IntValue(ref)
		if !ok {
			return reflect.Value{}, mismatch(rt, ref, KindInt, t)
		}
		if i < 0 {
			return reflect.Value{}, &OverflowError{HostType: t.String(), Value: fmt.Sprint(i)}
		}
		v := reflect.New(t).Elem()
		if v.OverflowUint(uint64(i)) {
			return reflect.Value{}, &OverflowError{HostType: t.String(), Value: fmt.Sprint(i)}
		}
		v.SetUint(uint64(i))
		return v, nil

	case reflect.Float32, reflect.Float64:
		f, ok := rt.FloatValue(ref)
		if !ok {
			// Integer objects widen to host floats.
			i, iok := rt.IntValue(ref)
			if !iok {
				return reflect.Value{}, mismatch(rt, ref, KindFloat, t)
			}
			f = float64(i)
		}
		if t.Kind() == reflect.Float32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return reflect.Value{}, &OverflowError{HostType: t.String(), Value: fmt.Sprint(f)}
		}
		return reflect.ValueOf(f).Convert(t), nil

	case reflect.String:
		s, ok := rt.StringValue(ref)
		if !ok {
			return reflect.Value{}, mismatch(rt, ref, KindString, t)
		}
		return reflect.ValueOf(s).Convert(t), nil

	case reflect.Slice:
		n, ok := rt.ListLen(ref)
		if !ok {
			return reflect.Value{}, mismatch(rt, ref, KindList, t)
		}
		out := reflect.MakeSlice(t, n, n)
		for i := 0; i < n; i++ {
			elem, _ := rt.ListAt(ref, i)
			ev, err := extractValue(tok, elem, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Map:
		keys, ok := rt.DictKeys(ref)
		if !ok {
			return reflect.Value{}, mismatch(rt, ref, KindDict, t)
		}
		out := reflect.MakeMapWithSize(t, len(keys))
		for _, k := range keys {
			kv, err := extractValue(tok, k, t.Key())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key: %w", err)
			}
			val, _ := rt.DictGet(ref, k)
			vv, err := extractValue(tok, val, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("value for key %v: %w", kv.Interface(), err)
			}
			out.SetMapIndex(kv, vv)
		}
		return out, nil

	case reflect.Pointer:
		// Optional values: none extracts to a nil pointer.
		if rt.KindOf(ref) == KindNone {
			return reflect.Zero(t), nil
		}
		ev, err := extractValue(tok, ref, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p, nil

	case reflect.Interface:
		if t.NumMethod() != 0 {
			break
		}
		v, err := extractGeneric(tok, ref)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t).Elem()
		if v != nil {
			rv.Set(reflect.ValueOf(v))
		}
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("quill: cannot extract into Go type %s", t)
}

// extractGeneric picks the natural host type for an object's runtime kind.
func extractGeneric(tok *Token, ref Ref) (any, error) {
	rt := tok.rt()
	switch rt.KindOf(ref) {
	case KindNone:
		return nil, nil
	case KindBool:
		b, _ := rt.BoolValue(ref)
		return b, nil
	case KindInt:
		i, _ := rt.IntValue(ref)
		return i, nil
	case KindFloat:
		f, _ := rt.FloatValue(ref)
		return f, nil
	case KindString:
		s, _ := rt.StringValue(ref)
		return s, nil
	case KindList:
		n, _ := rt.ListLen(ref)
		out := make([]any, n)
		for i := 0; i < n; i++ {
			elem, _ := rt.ListAt(ref, i)
			v, err := extractGeneric(tok, elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case KindDict:
		keys, _ := rt.DictKeys(ref)
		out := make(map[any]any, len(keys))
		for _, k := range keys {
			kv, err := extractGeneric(tok, k)
			if err != nil {
				return nil, fmt.Errorf("key: %w", err)
			}
			val, _ := rt.DictGet(ref, k)
			vv, err := extractGeneric(tok, val)
			if err != nil {
				return nil, fmt.Errorf("value for key %v: %w", kv, err)
			}
			out[kv] = vv
		}
		return out, nil
	}
	return nil, fmt.Errorf("quill: cannot extract object of kind %s into any", rt.KindOf(ref))
}

func mismatch(rt Runtime, ref Ref, want Kind, t reflect.Type) error {
	return &TypeMismatchError{Expected: want, Actual: rt.KindOf(ref), HostType: t.String()}
}
