package quill

import "fmt"

// Pair is one key/value entry for NewDict.
type Pair struct {
	Key   any
	Value any
}

// NewDict builds a runtime mapping from key/value pairs, inserted in declared
// order. A duplicate key keeps the last value (last-write-wins). Every key
// must convert to a hashable runtime representation; an unhashable key fails
// here, at construction, not at first use. Zero pairs returns the runtime's
// shared empty-mapping sentinel without allocating.
func NewDict(tok *Token, pairs ...Pair) (*Handle, error) {
	rt := tok.rt()
	if len(pairs) == 0 {
		return borrowView(tok, rt.EmptyDict()), nil
	}
	keys := make([]Ref, len(pairs))
	vals := make([]Ref, len(pairs))
	for i, p := range pairs {
		kh, err := ToObject(tok, p.Key)
		if err != nil {
			return nil, fmt.Errorf("key of entry %d: %w", i, err)
		}
		if !rt.IsHashable(kh.ref) {
			return nil, &UnhashableKeyError{Kind: rt.KindOf(kh.ref), Index: i}
		}
		vh, err := ToObject(tok, p.Value)
		if err != nil {
			return nil, fmt.Errorf("value of entry %d: %w", i, err)
		}
		keys[i] = kh.ref
		vals[i] = vh.ref
	}
	return newBorrowed(tok, rt.NewDict(keys, vals)), nil
}

// DictFromMap builds a runtime mapping from a host map. Iteration order is
// irrelevant; all entries are included. Go maps cannot hold duplicate keys,
// so no duplicate policy applies here.
func DictFromMap[K comparable, V any](tok *Token, m map[K]V) (*Handle, error) {
	rt := tok.rt()
	if len(m) == 0 {
		return borrowView(tok, rt.EmptyDict()), nil
	}
	keys := make([]Ref, 0, len(m))
	vals := make([]Ref, 0, len(m))
	for k, v := range m {
		kh, err := ToObject(tok, k)
		if err != nil {
			return nil, fmt.Errorf("key %v: %w", k, err)
		}
		if !rt.IsHashable(kh.ref) {
			return nil, &UnhashableKeyError{Kind: rt.KindOf(kh.ref), Index: len(keys)}
		}
		vh, err := ToObject(tok, v)
		if err != nil {
			return nil, fmt.Errorf("value for key %v: %w", k, err)
		}
		keys = append(keys, kh.ref)
		vals = append(vals, vh.ref)
	}
	return newBorrowed(tok, rt.NewDict(keys, vals)), nil
}
