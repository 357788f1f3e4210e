package quill

// Ref is an opaque reference to an object owned by the embedded runtime.
// The zero Ref is never a valid object.
type Ref uint64

// Kind classifies the runtime-side representation of an object.
type Kind int

const (
	KindInvalid Kind = iota
	KindNone
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindDict
	KindCallable
	KindObject
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindNone:     "none",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindList:     "list",
	KindDict:     "dict",
	KindCallable: "callable",
	KindObject:   "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Runtime is the boundary contract the bridge expects from an embedded
// interpreter's object space. The bridge never looks behind it: it creates
// objects, reads them back, invokes callables and forwards pending errors
// without interpreting them.
//
// Reference counting: constructors and Invoke return a reference the caller
// owns (one refcount unit). IncRef and DecRef must be safe to call without
// holding interpreter access; every other method is only called while the
// bridge holds the access lock.
//
// Accessors use the comma-ok form. A false result means the object's kind
// does not match; the bridge turns that into a typed conversion error.
type Runtime interface {
	IncRef(Ref)
	DecRef(Ref)
	KindOf(Ref) Kind

	// Constructors. The returned reference is owned by the caller.
	None() Ref
	NewBool(v bool) Ref
	NewInt(v int64) Ref
	NewFloat(v float64) Ref
	NewString(v string) Ref

	// NewList builds a fixed-length ordered sequence. The list takes its
	// own references to the items; the caller keeps ownership of its own.
	NewList(items []Ref) Ref

	// NewDict builds a mapping from parallel key/value slices, in order,
	// last write winning on duplicate keys. All keys must be hashable;
	// callers check with IsHashable first.
	NewDict(keys, values []Ref) Ref

	// EmptyList and EmptyDict return shared zero-length sentinels. They are
	// immortal: reference counting on them is a no-op.
	EmptyList() Ref
	EmptyDict() Ref

	BoolValue(Ref) (bool, bool)
	IntValue(Ref) (int64, bool)
	FloatValue(Ref) (float64, bool)
	StringValue(Ref) (string, bool)

	// ListLen and ListAt read a sequence. ListAt returns a reference the
	// list continues to own; the caller must not DecRef it.
	ListLen(Ref) (int, bool)
	ListAt(Ref, int) (Ref, bool)

	DictLen(Ref) (int, bool)
	// DictGet looks up a key. The second result is false when the receiver
	// is not a dict or the key is absent.
	DictGet(dict, key Ref) (Ref, bool)
	// DictKeys returns key references in insertion order, owned by the dict.
	DictKeys(Ref) ([]Ref, bool)

	IsCallable(Ref) bool
	IsHashable(Ref) bool

	// GetAttr looks up a named attribute. False means no such attribute.
	GetAttr(obj Ref, name string) (Ref, bool)

	// Invoke calls fn with a list of positional arguments and an optional
	// dict of keywords (zero Ref means none). On failure it returns false
	// and leaves a pending error for LastError.
	Invoke(fn, args, kwargs Ref) (Ref, bool)

	// LastError reports the pending error description, if any. ClearError
	// resets it. The description is opaque to the bridge.
	LastError() (string, bool)
	ClearError()

	// Close tears the object space down. After Close no method may be
	// called; the bridge's VM guarantees that.
	Close() error
}
