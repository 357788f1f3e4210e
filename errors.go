package quill

import (
	"errors"
	"fmt"
)

// ErrInterpreterUnavailable is returned by VM.With after the VM has been
// closed. It is fatal: the embedded runtime is gone and no retry can help.
var ErrInterpreterUnavailable = errors.New("quill: interpreter has been torn down")

// TypeMismatchError reports an extraction whose requested host type does not
// match the object's runtime kind.
type TypeMismatchError struct {
	Expected Kind   // kind the requested host type maps to
	Actual   Kind   // kind the object actually has
	HostType string // requested host type, e.g. "int64"
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("quill: cannot extract %s: expected %s object, got %s",
		e.HostType, e.Expected, e.Actual)
}

// OverflowError reports a numeric extraction that would lose information,
// such as narrowing an out-of-range integer or extracting a negative value
// into an unsigned type. The value is never truncated silently.
type OverflowError struct {
	HostType string
	Value    string // string form of the offending value
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("quill: value %s does not fit in %s", e.Value, e.HostType)
}

// UnhashableKeyError reports a mapping key whose runtime representation is
// not hashable. It is raised while the mapping is built, never later.
type UnhashableKeyError struct {
	Kind  Kind
	Index int // position of the offending entry, in declared order
}

func (e *UnhashableKeyError) Error() string {
	return fmt.Sprintf("quill: unhashable key of kind %s at entry %d", e.Kind, e.Index)
}

// NotCallableError reports an invocation target that is not callable. It is
// surfaced before any argument containers are built.
type NotCallableError struct {
	Kind Kind
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("quill: object of kind %s is not callable", e.Kind)
}

// MissingAttributeError reports a failed attribute lookup during a method
// call. It is distinct from NotCallableError: the name resolved to nothing
// at all.
type MissingAttributeError struct {
	Name string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("quill: object has no attribute %q", e.Name)
}

// RaisedError wraps an error raised inside the embedded runtime during a
// call. The description is opaque: the bridge forwards it without trying to
// model the runtime's error hierarchy.
type RaisedError struct {
	Description string
}

func (e *RaisedError) Error() string {
	return "quill: call raised: " + e.Description
}
