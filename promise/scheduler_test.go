package promise_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/promise"
)

func TestBasicEventLoop(t *testing.T) {
	t.Parallel()
	loop := promise.NewScheduler()
	var ran int
	f := func() error {
		ran++
		return nil
	}
	require.NoError(t, loop.Start(f))
	require.Equal(t, 1, ran)
	require.NoError(t, loop.Start(f))
	require.Equal(t, 2, ran)
	require.Error(t, loop.Start(func() error {
		_ = f()
		loop.RegisterCallback()(f)
		return errors.New("something")
	}))
	require.Equal(t, 3, ran)
}

func TestEventLoopRegistered(t *testing.T) {
	t.Parallel()
	loop := promise.NewScheduler()
	var ran int
	f := func() error {
		ran++
		r := loop.RegisterCallback()
		go func() {
			time.Sleep(200 * time.Millisecond)
			r(func() error {
				ran++
				return nil
			})
		}()
		return nil
	}
	start := time.Now()
	require.NoError(t, loop.Start(f))
	took := time.Since(start)
	require.Equal(t, 2, ran)
	require.GreaterOrEqual(t, took, 200*time.Millisecond)
	require.Less(t, took, 400*time.Millisecond)
}

func TestEventLoopWaitOnRegistered(t *testing.T) {
	t.Parallel()
	var ran int
	loop := promise.NewScheduler()
	f := func() error {
		ran++
		r := loop.RegisterCallback()
		go func() {
			time.Sleep(200 * time.Millisecond)
			r(func() error {
				ran++
				return nil
			})
		}()
		return fmt.Errorf("expected")
	}
	start := time.Now()
	require.Error(t, loop.Start(f))
	took := time.Since(start)
	loop.WaitOnRegistered()
	took2 := time.Since(start)
	require.Equal(t, 1, ran)
	require.Less(t, took, 50*time.Millisecond)
	require.GreaterOrEqual(t, took2, 200*time.Millisecond)
}

func TestEventLoopPanicOnDoubleCallback(t *testing.T) {
	t.Parallel()
	loop := promise.NewScheduler()
	r := loop.RegisterCallback()
	r(func() error { return nil })
	require.Panics(t, func() { r(func() error { return nil }) })
	loop.WaitOnRegistered()
}

func TestPostBeforeStartIsBacklogged(t *testing.T) {
	t.Parallel()
	loop := promise.NewScheduler()
	var ran bool
	loop.Post(func() error {
		ran = true
		return nil
	})
	require.NoError(t, loop.Start(func() error { return nil }))
	require.True(t, ran)
}
