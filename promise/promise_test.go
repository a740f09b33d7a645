package promise_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/promise"
	"github.com/go-ecma/engine/value"
)

func TestResolveThenFulfilled(t *testing.T) {
	t.Parallel()
	s := promise.NewScheduler()
	p := promise.New(s)

	var got value.Value
	down := p.Then(func(v value.Value) (value.Value, error) {
		got = v
		return value.Number(2), nil
	}, nil)

	p.Resolve(value.Number(1))
	require.NoError(t, s.Start(func() error { return nil }))

	assert.Equal(t, value.Number(1), got)
	assert.Equal(t, promise.Fulfilled, down.State())
	assert.Equal(t, value.Number(2), down.Value())
}

func TestThenNeverRunsSynchronously(t *testing.T) {
	t.Parallel()
	s := promise.NewScheduler()
	p := promise.New(s)
	p.Resolve(value.Number(1))

	var ran bool
	p.Then(func(v value.Value) (value.Value, error) {
		ran = true
		return v, nil
	}, nil)

	assert.False(t, ran, "then must schedule, never run inline")
	require.NoError(t, s.Start(func() error { return nil }))
	assert.True(t, ran)
}

func TestMissingHandlerPassesThrough(t *testing.T) {
	t.Parallel()
	s := promise.NewScheduler()
	p := promise.New(s)
	p.Resolve(value.String("x"))

	down := p.Then(nil, nil)
	require.NoError(t, s.Start(func() error { return nil }))
	assert.Equal(t, promise.Fulfilled, down.State())
	assert.Equal(t, value.String("x"), down.Value())
}

func TestRejectPropagatesThroughMissingHandler(t *testing.T) {
	t.Parallel()
	s := promise.NewScheduler()
	p := promise.New(s)
	p.Reject(value.String("boom"))

	down := p.Then(func(v value.Value) (value.Value, error) { return v, nil }, nil)
	require.NoError(t, s.Start(func() error { return nil }))
	assert.Equal(t, promise.Rejected, down.State())
	assert.Equal(t, value.String("boom"), down.Value())
}

func TestThrownHandlerRejectsDownstream(t *testing.T) {
	t.Parallel()
	s := promise.NewScheduler()
	p := promise.New(s)
	p.Resolve(value.Number(1))

	down := p.Then(func(value.Value) (value.Value, error) {
		return value.Value{}, &promise.ThrownError{Value: value.String("nope")}
	}, nil)

	require.NoError(t, s.Start(func() error { return nil }))
	assert.Equal(t, promise.Rejected, down.State())
	assert.Equal(t, value.String("nope"), down.Value())
}

func TestResolveIdempotentAfterFirstSettle(t *testing.T) {
	t.Parallel()
	s := promise.NewScheduler()
	p := promise.New(s)
	p.Resolve(value.Number(1))
	p.Resolve(value.Number(2))
	p.Reject(value.Number(3))

	require.NoError(t, s.Start(func() error { return nil }))
	assert.Equal(t, promise.Fulfilled, p.State())
	assert.Equal(t, value.Number(1), p.Value())
}

func TestThenableAssimilation(t *testing.T) {
	origCheck := promise.CheckThenable
	defer func() { promise.CheckThenable = origCheck }()

	s := promise.NewScheduler()
	inner := promise.New(s)

	promise.CheckThenable = func(v value.Value, resolve, reject func(value.Value)) (bool, error) {
		if v.IsObject() {
			inner.Then(func(iv value.Value) (value.Value, error) {
				resolve(iv)
				return value.Undefined, nil
			}, func(reason value.Value) (value.Value, error) {
				reject(reason)
				return value.Undefined, nil
			})
			return true, nil
		}
		return false, nil
	}

	a := object.NewArena()
	ref := a.Alloc(object.NewOrdinary(value.Null))

	p := promise.New(s)
	p.Resolve(value.Object(ref))
	inner.Resolve(value.Number(42))

	require.NoError(t, s.Start(func() error { return nil }))
	require.NoError(t, s.Start(func() error { return nil }))

	assert.Equal(t, promise.Fulfilled, p.State())
	assert.Equal(t, value.Number(42), p.Value())
}

func TestDepthGuardRejectsUnboundedThenableChain(t *testing.T) {
	origCheck := promise.CheckThenable
	defer func() { promise.CheckThenable = origCheck }()

	s := promise.NewScheduler()

	a := object.NewArena()
	ref := a.Alloc(object.NewOrdinary(value.Null))
	chained := value.Object(ref)

	promise.CheckThenable = func(v value.Value, resolve, reject func(value.Value)) (bool, error) {
		if v.IsObject() {
			resolve(chained) // synchronously chains to another thenable forever
			return true, nil
		}
		return false, nil
	}

	p := promise.New(s)
	p.Resolve(chained)

	assert.Equal(t, promise.Rejected, p.State())
}
