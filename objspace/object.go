package objspace

import (
	"math"
	"strconv"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/quill-lang/quill"
)

// object is one entry in the space's handle table. Exactly one of the value
// fields is meaningful, selected by kind.
type object struct {
	refs   int64
	pinned bool // immortal: reference counting is a no-op
	kind   quill.Kind

	b     bool
	i     int64
	f     float64
	s     string
	items []quill.Ref        // list
	dict  *linkedhashmap.Map // hash key string -> *entry
	fn    CallFunc           // callable
	attrs *linkedhashmap.Map // attribute name -> quill.Ref
}

// entry is one dict slot. The key reference is kept so DictKeys can hand the
// original objects back in insertion order.
type entry struct {
	key quill.Ref
	val quill.Ref
}

// hashKey derives the dict bucket key for a hashable object. Kinds hash
// disjointly, except that integral floats hash like the equal int so that
// 2 and 2.0 address the same slot.
func hashKey(o *object) (string, bool) {
	switch o.kind {
	case quill.KindNone:
		return "n:", true
	case quill.KindBool:
		if o.b {
			return "b:1", true
		}
		return "b:0", true
	case quill.KindInt:
		return "i:" + strconv.FormatInt(o.i, 10), true
	case quill.KindFloat:
		// The upper bound is exclusive: MaxInt64 rounds up to 2^63 as a
		// float64, and int64(2^63) is out of range.
		if o.f == math.Trunc(o.f) && o.f >= math.MinInt64 && o.f < 1<<63 {
			return "i:" + strconv.FormatInt(int64(o.f), 10), true
		}
		return "f:" + strconv.FormatFloat(o.f, 'g', -1, 64), true
	case quill.KindString:
		return "s:" + o.s, true
	}
	return "", false
}
