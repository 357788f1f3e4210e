package quill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill"
)

func TestNewDictFromPairs(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.NewDict(tok,
			quill.Pair{Key: "k1", Value: int64(1)},
			quill.Pair{Key: "k2", Value: int64(2)},
		)
		require.NoError(t, err)
		require.Equal(t, quill.KindDict, h.Kind(tok))

		got, err := quill.Extract[map[string]int64](tok, h)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"k1": 1, "k2": 2}, got)
		return nil
	}))
}

func TestDictFromMap(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.DictFromMap(tok, map[string]int64{"k1": 1, "k2": 2})
		require.NoError(t, err)

		got, err := quill.Extract[map[string]int64](tok, h)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"k1": 1, "k2": 2}, got)
		return nil
	}))
}

func TestNewDictDuplicateKeyLastWins(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.NewDict(tok,
			quill.Pair{Key: "k", Value: int64(1)},
			quill.Pair{Key: "other", Value: int64(5)},
			quill.Pair{Key: "k", Value: int64(2)},
		)
		require.NoError(t, err)

		got, err := quill.Extract[map[string]int64](tok, h)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"k": 2, "other": 5}, got)
		return nil
	}))
}

func TestNewDictUnhashableKeyFailsAtConstruction(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		_, err := quill.NewDict(tok,
			quill.Pair{Key: "fine", Value: int64(0)},
			quill.Pair{Key: []int64{1, 2}, Value: int64(1)},
		)
		var unhashable *quill.UnhashableKeyError
		require.ErrorAs(t, err, &unhashable)
		assert.Equal(t, quill.KindList, unhashable.Kind)
		assert.Equal(t, 1, unhashable.Index)
		return nil
	}))
}

func TestNewDictNonStringKeys(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h, err := quill.NewDict(tok,
			quill.Pair{Key: int64(1), Value: "one"},
			quill.Pair{Key: int64(2), Value: "two"},
		)
		require.NoError(t, err)

		got, err := quill.Extract[map[int64]string](tok, h)
		require.NoError(t, err)
		assert.Equal(t, map[int64]string{1: "one", 2: "two"}, got)
		return nil
	}))
}

func TestEmptyDictReusesSentinel(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		a, err := quill.NewDict(tok)
		require.NoError(t, err)
		b, err := quill.DictFromMap(tok, map[string]int64{})
		require.NoError(t, err)
		assert.Equal(t, a.Ref(), b.Ref(), "empty dict is shared")
		return nil
	}))
}
