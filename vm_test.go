package quill_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill"
	"github.com/quill-lang/quill/objspace"
)

func newVM(t *testing.T) *quill.VM {
	t.Helper()
	vm, err := objspace.NewVM()
	require.NoError(t, err)
	t.Cleanup(func() { vm.Close() })
	return vm
}

func TestWithProvidesLiveToken(t *testing.T) {
	vm := newVM(t)

	called := false
	err := vm.With(func(tok *quill.Token) error {
		called = true
		h := tok.Int(42)
		require.Equal(t, quill.KindInt, h.Kind(tok))
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestWithPropagatesClosureError(t *testing.T) {
	vm := newVM(t)

	boom := errors.New("boom")
	err := vm.With(func(tok *quill.Token) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestWithIsReentrant(t *testing.T) {
	vm := newVM(t)

	err := vm.With(func(outer *quill.Token) error {
		return vm.With(func(inner *quill.Token) error {
			// Both tokens are usable while the inner scope is open.
			outer.Int(1)
			inner.Int(2)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestInnerTokenDiesWithInnerScope(t *testing.T) {
	vm := newVM(t)

	err := vm.With(func(outer *quill.Token) error {
		var stale *quill.Token
		_ = vm.With(func(inner *quill.Token) error {
			stale = inner
			return nil
		})
		// The outer token survives the nested release.
		outer.Int(3)
		assert.Panics(t, func() { stale.Int(4) })
		return nil
	})
	require.NoError(t, err)
}

func TestTokenUseAfterScopePanics(t *testing.T) {
	vm := newVM(t)

	var stale *quill.Token
	require.NoError(t, vm.With(func(tok *quill.Token) error {
		stale = tok
		return nil
	}))
	assert.Panics(t, func() { stale.String("too late") })
}

func TestTokenUseFromForeignGoroutinePanics(t *testing.T) {
	vm := newVM(t)

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		h := tok.Int(7)

		// The token is live, but only on the goroutine it was issued to.
		panicked := make(chan bool, 2)
		trap := func(fn func()) {
			defer func() { panicked <- recover() != nil }()
			fn()
		}
		go trap(func() { tok.Int(123) })
		go trap(func() { _, _ = quill.Extract[int64](tok, h) })
		require.True(t, <-panicked)
		require.True(t, <-panicked)

		// The holder is unaffected.
		require.Equal(t, quill.KindInt, h.Kind(tok))
		return nil
	}))
}

func TestAccessIsExclusive(t *testing.T) {
	vm := newVM(t)

	// A plain int mutated only under the token. The race detector and the
	// final count both catch overlapping access windows.
	counter := 0
	const goroutines, rounds = 4, 500

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_ = vm.With(func(tok *quill.Token) error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	require.NoError(t, vm.With(func(tok *quill.Token) error {
		require.Equal(t, goroutines*rounds, counter)
		return nil
	}))
}

func TestCloseMakesVMUnavailable(t *testing.T) {
	vm, err := objspace.NewVM()
	require.NoError(t, err)

	require.NoError(t, vm.Close())
	err = vm.With(func(tok *quill.Token) error { return nil })
	require.ErrorIs(t, err, quill.ErrInterpreterUnavailable)

	// Close is idempotent.
	require.NoError(t, vm.Close())
}

func TestTracingDoesNotDisturbAccess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill")
	defer teardown()

	vm := newVM(t)
	require.NoError(t, vm.With(func(tok *quill.Token) error {
		tok.String("traced")
		return nil
	}))
}
