package quill_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill"
)

func TestExtractTypeMismatch(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.ToObject(tok, "not a number")
		require.NoError(t, err)

		_, err = quill.Extract[int64](tok, h)
		var mismatch *quill.TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, quill.KindInt, mismatch.Expected)
		assert.Equal(t, quill.KindString, mismatch.Actual)
		return nil
	}))
}

func TestExtractNarrowingNeverTruncates(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		big, err := quill.ToObject(tok, int64(1000))
		require.NoError(t, err)

		t.Run("IntoInt8", func(t *testing.T) {
			_, err := quill.Extract[int8](tok, big)
			var overflow *quill.OverflowError
			require.ErrorAs(t, err, &overflow)
			assert.Equal(t, "int8", overflow.HostType)
		})

		t.Run("NegativeIntoUint", func(t *testing.T) {
			neg, err := quill.ToObject(tok, int64(-1))
			require.NoError(t, err)
			_, err = quill.Extract[uint32](tok, neg)
			var overflow *quill.OverflowError
			require.ErrorAs(t, err, &overflow)
		})

		t.Run("FitsExactly", func(t *testing.T) {
			small, err := quill.ToObject(tok, int64(127))
			require.NoError(t, err)
			got, err := quill.Extract[int8](tok, small)
			require.NoError(t, err)
			assert.Equal(t, int8(127), got)
		})

		t.Run("HugeFloatIntoFloat32", func(t *testing.T) {
			f, err := quill.ToObject(tok, 1e300)
			require.NoError(t, err)
			_, err = quill.Extract[float32](tok, f)
			var overflow *quill.OverflowError
			require.ErrorAs(t, err, &overflow)
		})
		return nil
	}))
}

func TestExtractIntWidensToFloat(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.ToObject(tok, int64(7))
		require.NoError(t, err)
		got, err := quill.Extract[float64](tok, h)
		require.NoError(t, err)
		assert.Equal(t, 7.0, got)
		return nil
	}))
}

func TestExtractReportsFailingElement(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.NewList(tok, int64(1), "two", int64(3))
		require.NoError(t, err)

		_, err = quill.Extract[[]int64](tok, h)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "element 1")
		var mismatch *quill.TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		return nil
	}))
}

func TestExtractOptionalPointer(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		none, err := quill.ToObject(tok, nil)
		require.NoError(t, err)
		p, err := quill.Extract[*int64](tok, none)
		require.NoError(t, err)
		assert.Nil(t, p)

		some, err := quill.ToObject(tok, int64(9))
		require.NoError(t, err)
		p, err = quill.Extract[*int64](tok, some)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, int64(9), *p)
		return nil
	}))
}

func TestExtractAny(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.NewList(tok, int64(1), "two", 3.5, true, nil)
		require.NoError(t, err)
		got, err := quill.Extract[any](tok, h)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1), "two", 3.5, true, nil}, got)
		return nil
	}))
}

func TestExtractHandleIdentity(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.ToObject(tok, math.Pi)
		require.NoError(t, err)
		same, err := quill.Extract[*quill.Handle](tok, h)
		require.NoError(t, err)
		assert.Same(t, h, same)
		return nil
	}))
}

// point recovers itself from a two-element list via the Extractor hook.
type point struct{ x, y int64 }

func (p *point) ExtractObject(tok *quill.Token, h *quill.Handle) error {
	coords, err := quill.Extract[[]int64](tok, h)
	if err != nil {
		return err
	}
	if len(coords) != 2 {
		return &quill.TypeMismatchError{Expected: quill.KindList, Actual: h.Kind(tok), HostType: "point"}
	}
	p.x, p.y = coords[0], coords[1]
	return nil
}

func TestExtractorHook(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.NewList(tok, int64(8), int64(15))
		require.NoError(t, err)
		got, err := quill.Extract[point](tok, h)
		require.NoError(t, err)
		assert.Equal(t, point{8, 15}, got)
		return nil
	}))
}
