package objspace

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/schuko/tracing"

	"github.com/quill-lang/quill"
)

// tracer traces object-space events.
func tracer() tracing.Trace {
	return tracing.Select("quill.objspace")
}

// Space is a reference-counted object space implementing quill.Runtime.
//
// Reference counting is guarded by the space's own lock and is safe from any
// goroutine; everything else follows the boundary contract and is only
// reached while the bridge holds interpreter access.
type Space struct {
	mu      sync.Mutex
	objects map[quill.Ref]*object
	nextID  quill.Ref
	allocs  atomic.Int64
	opts    Options

	pending string
	hasErr  bool

	none      quill.Ref
	truth     quill.Ref
	falsehood quill.Ref
	emptyList quill.Ref
	emptyDict quill.Ref
	smallInts []quill.Ref
}

var _ quill.Runtime = (*Space)(nil)

// New creates an object space with interned singletons in place.
func New(options ...Option) (*Space, error) {
	opts := DefaultOptions()
	for _, o := range options {
		o(&opts)
	}
	if err := validate.Struct(&opts); err != nil {
		return nil, fmt.Errorf("objspace: invalid options: %w", err)
	}

	s := &Space{
		objects: make(map[quill.Ref]*object, opts.InitialCapacity),
		nextID:  1,
		opts:    opts,
	}
	s.none = s.pinNew(&object{kind: quill.KindNone})
	s.truth = s.pinNew(&object{kind: quill.KindBool, b: true})
	s.falsehood = s.pinNew(&object{kind: quill.KindBool, b: false})
	s.emptyList = s.pinNew(&object{kind: quill.KindList})
	s.emptyDict = s.pinNew(&object{kind: quill.KindDict, dict: linkedhashmap.New()})
	s.smallInts = make([]quill.Ref, opts.SmallIntMax-opts.SmallIntMin+1)
	for v := opts.SmallIntMin; v <= opts.SmallIntMax; v++ {
		s.smallInts[v-opts.SmallIntMin] = s.pinNew(&object{kind: quill.KindInt, i: v})
	}
	return s, nil
}

// NewVM wraps a fresh object space in a quill.VM.
func NewVM(options ...Option) (*quill.VM, error) {
	s, err := New(options...)
	if err != nil {
		return nil, err
	}
	return quill.New(s), nil
}

// pinNew interns an immortal object during construction.
func (s *Space) pinNew(o *object) quill.Ref {
	o.pinned = true
	o.refs = 1
	id := s.nextID
	s.nextID++
	s.objects[id] = o
	return id
}

// alloc inserts a fresh object with one reference, owned by the caller.
func (s *Space) alloc(o *object) quill.Ref {
	s.mu.Lock()
	o.refs = 1
	id := s.nextID
	s.nextID++
	s.objects[id] = o
	s.mu.Unlock()
	s.allocs.Add(1)
	if s.opts.TraceAllocs {
		tracer().Debugf("alloc %d kind=%s", id, o.kind)
	}
	return id
}

func (s *Space) get(r quill.Ref) *object {
	s.mu.Lock()
	o := s.objects[r]
	s.mu.Unlock()
	return o
}

// IncRef takes one reference-count unit. Safe without interpreter access.
func (s *Space) IncRef(r quill.Ref) {
	s.mu.Lock()
	if o := s.objects[r]; o != nil && !o.pinned {
		o.refs++
	}
	s.mu.Unlock()
}

// DecRef drops one reference-count unit. A count of zero frees the object
// and drops its references to children. Safe without interpreter access.
func (s *Space) DecRef(r quill.Ref) {
	s.mu.Lock()
	s.decLocked(r)
	s.mu.Unlock()
}

func (s *Space) decLocked(r quill.Ref) {
	o := s.objects[r]
	if o == nil || o.pinned {
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	delete(s.objects, r)
	for _, c := range o.items {
		s.decLocked(c)
	}
	if o.dict != nil {
		it := o.dict.Iterator()
		for it.Next() {
			e := it.Value().(*entry)
			s.decLocked(e.key)
			s.decLocked(e.val)
		}
	}
	if o.attrs != nil {
		it := o.attrs.Iterator()
		for it.Next() {
			s.decLocked(it.Value().(quill.Ref))
		}
	}
}

// KindOf reports an object's kind, KindInvalid for dead references.
func (s *Space) KindOf(r quill.Ref) quill.Kind {
	if o := s.get(r); o != nil {
		return o.kind
	}
	return quill.KindInvalid
}

func (s *Space) None() quill.Ref { return s.none }

func (s *Space) NewBool(v bool) quill.Ref {
	if v {
		return s.truth
	}
	return s.falsehood
}

func (s *Space) NewInt(v int64) quill.Ref {
	if v >= s.opts.SmallIntMin && v <= s.opts.SmallIntMax {
		return s.smallInts[v-s.opts.SmallIntMin]
	}
	return s.alloc(&object{kind: quill.KindInt, i: v})
}

func (s *Space) NewFloat(v float64) quill.Ref {
	return s.alloc(&object{kind: quill.KindFloat, f: v})
}

func (s *Space) NewString(v string) quill.Ref {
	return s.alloc(&object{kind: quill.KindString, s: v})
}

// NewList builds a fixed-length list holding its own references to items.
func (s *Space) NewList(items []quill.Ref) quill.Ref {
	own := make([]quill.Ref, len(items))
	copy(own, items)
	s.mu.Lock()
	for _, it := range own {
		if o := s.objects[it]; o != nil && !o.pinned {
			o.refs++
		}
	}
	s.mu.Unlock()
	return s.alloc(&object{kind: quill.KindList, items: own})
}

// NewDict builds an insertion-ordered dict. On a duplicate key the first key
// object stays and the value is replaced: last write wins.
func (s *Space) NewDict(keys, values []quill.Ref) quill.Ref {
	if len(keys) != len(values) {
		panic("objspace: NewDict key/value length mismatch")
	}
	d := linkedhashmap.New()
	s.mu.Lock()
	for i := range keys {
		ko := s.objects[keys[i]]
		hk, ok := hashKey(ko)
		if !ok {
			s.mu.Unlock()
			panic("objspace: NewDict called with unhashable key")
		}
		if prev, found := d.Get(hk); found {
			e := prev.(*entry)
			s.incLocked(values[i])
			s.decLocked(e.val)
			e.val = values[i]
			continue
		}
		s.incLocked(keys[i])
		s.incLocked(values[i])
		d.Put(hk, &entry{key: keys[i], val: values[i]})
	}
	s.mu.Unlock()
	return s.alloc(&object{kind: quill.KindDict, dict: d})
}

func (s *Space) incLocked(r quill.Ref) {
	if o := s.objects[r]; o != nil && !o.pinned {
		o.refs++
	}
}

func (s *Space) EmptyList() quill.Ref { return s.emptyList }
func (s *Space) EmptyDict() quill.Ref { return s.emptyDict }

func (s *Space) BoolValue(r quill.Ref) (bool, bool) {
	if o := s.get(r); o != nil && o.kind == quill.KindBool {
		return o.b, true
	}
	return false, false
}

func (s *Space) IntValue(r quill.Ref) (int64, bool) {
	if o := s.get(r); o != nil && o.kind == quill.KindInt {
		return o.i, true
	}
	return 0, false
}

func (s *Space) FloatValue(r quill.Ref) (float64, bool) {
	if o := s.get(r); o != nil && o.kind == quill.KindFloat {
		return o.f, true
	}
	return 0, false
}

func (s *Space) StringValue(r quill.Ref) (string, bool) {
	if o := s.get(r); o != nil && o.kind == quill.KindString {
		return o.s, true
	}
	return "", false
}

func (s *Space) ListLen(r quill.Ref) (int, bool) {
	if o := s.get(r); o != nil && o.kind == quill.KindList {
		return len(o.items), true
	}
	return 0, false
}

func (s *Space) ListAt(r quill.Ref, i int) (quill.Ref, bool) {
	if o := s.get(r); o != nil && o.kind == quill.KindList && i >= 0 && i < len(o.items) {
		return o.items[i], true
	}
	return 0, false
}

func (s *Space) DictLen(r quill.Ref) (int, bool) {
	if o := s.get(r); o != nil && o.kind == quill.KindDict {
		return o.dict.Size(), true
	}
	return 0, false
}

func (s *Space) DictGet(dict, key quill.Ref) (quill.Ref, bool) {
	o := s.get(dict)
	ko := s.get(key)
	if o == nil || o.kind != quill.KindDict || ko == nil {
		return 0, false
	}
	hk, ok := hashKey(ko)
	if !ok {
		return 0, false
	}
	v, found := o.dict.Get(hk)
	if !found {
		return 0, false
	}
	return v.(*entry).val, true
}

func (s *Space) DictKeys(r quill.Ref) ([]quill.Ref, bool) {
	o := s.get(r)
	if o == nil || o.kind != quill.KindDict {
		return nil, false
	}
	keys := make([]quill.Ref, 0, o.dict.Size())
	it := o.dict.Iterator()
	for it.Next() {
		keys = append(keys, it.Value().(*entry).key)
	}
	return keys, true
}

func (s *Space) IsCallable(r quill.Ref) bool {
	o := s.get(r)
	return o != nil && o.kind == quill.KindCallable
}

func (s *Space) IsHashable(r quill.Ref) bool {
	o := s.get(r)
	if o == nil {
		return false
	}
	_, ok := hashKey(o)
	return ok
}

func (s *Space) GetAttr(obj quill.Ref, name string) (quill.Ref, bool) {
	o := s.get(obj)
	if o == nil || o.attrs == nil {
		return 0, false
	}
	v, found := o.attrs.Get(name)
	if !found {
		return 0, false
	}
	return v.(quill.Ref), true
}

// Invoke runs a callable. The callable's Go function runs without the
// space's lock held, so it may construct objects freely.
func (s *Space) Invoke(fn, args, kwargs quill.Ref) (quill.Ref, bool) {
	fo := s.get(fn)
	if fo == nil || fo.kind != quill.KindCallable {
		s.setError("object is not callable")
		return 0, false
	}

	ctx := &CallCtx{sp: s}
	if ao := s.get(args); ao != nil && ao.kind == quill.KindList {
		ctx.args = ao.items
	}
	if kwargs != 0 {
		if ko := s.get(kwargs); ko != nil && ko.kind == quill.KindDict {
			ctx.kwargs = make(map[string]quill.Ref, ko.dict.Size())
			it := ko.dict.Iterator()
			for it.Next() {
				e := it.Value().(*entry)
				if key := s.get(e.key); key != nil && key.kind == quill.KindString {
					ctx.kwargs[key.s] = e.val
				}
			}
		}
	}

	result, err := fo.fn(ctx)
	if err != nil {
		tracer().Infof("callable raised: %v", err)
		s.setError(err.Error())
		return 0, false
	}
	if result == 0 {
		result = s.none
	}
	return result, true
}

func (s *Space) setError(desc string) {
	s.mu.Lock()
	s.pending = desc
	s.hasErr = true
	s.mu.Unlock()
}

// LastError reports the pending error description, if any.
func (s *Space) LastError() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.hasErr
}

// ClearError resets the pending error state.
func (s *Space) ClearError() {
	s.mu.Lock()
	s.pending = ""
	s.hasErr = false
	s.mu.Unlock()
}

// Close drops the whole handle table.
func (s *Space) Close() error {
	s.mu.Lock()
	s.objects = make(map[quill.Ref]*object)
	s.pending = ""
	s.hasErr = false
	s.mu.Unlock()
	return nil
}

// RefCount reports an object's current reference count, 0 once freed.
// Intended for tests and leak diagnostics.
func (s *Space) RefCount(r quill.Ref) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.objects[r]; o != nil {
		return o.refs
	}
	return 0
}

// Live reports the number of objects in the table, interned singletons
// included.
func (s *Space) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Allocs reports the number of non-interned allocations performed so far.
func (s *Space) Allocs() int64 {
	return s.allocs.Load()
}
