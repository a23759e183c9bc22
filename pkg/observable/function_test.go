package observable_test

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"weak"

	"github.com/aretw0/observed/internal/testutils"
	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/observable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

func observedSum(p point) (int, error) { return p.X + p.Y, nil }

func TestFunction_CallThenDispatch(t *testing.T) {
	var calls []string
	var seen []point

	f := observable.Wrap(func(p point) (int, error) {
		calls = append(calls, "target")
		seen = append(seen, p)
		return p.X * p.Y, nil
	})

	observers := []*observable.Handler[point]{}
	for _, name := range []string{"one", "two", "three"} {
		h := observable.Func(func(p point) error {
			calls = append(calls, name)
			seen = append(seen, p)
			return nil
		})
		observers = append(observers, h)
		require.True(t, f.Add(h))
	}

	got, err := f.Call(point{X: 3, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, 12, got)
	assert.Equal(t, []string{"target", "one", "two", "three"}, calls, "N observers means N+1 calls")
	for _, p := range seen {
		assert.Equal(t, point{X: 3, Y: 4}, p)
	}
	runtime.KeepAlive(observers)
}

func TestFunction_AddDiscard(t *testing.T) {
	f := observable.Wrap(observedSum)
	h := observable.Func(func(point) error { return nil })

	added := f.Add(h)
	discarded := f.Discard(h)
	assert.True(t, added)
	assert.True(t, discarded)
	assert.False(t, f.Discard(h))
	assert.Zero(t, f.Len())
}

func TestFunction_IdempotentRegistration(t *testing.T) {
	f := observable.Wrap(observedSum)
	count := 0
	h := observable.Func(func(point) error {
		count++
		return nil
	})

	assert.True(t, f.Add(h))
	assert.False(t, f.Add(h))
	assert.Equal(t, 1, f.Len())

	_, err := f.Call(point{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	runtime.KeepAlive(h)
}

func TestFunction_PassObserved(t *testing.T) {
	f := observable.Wrap(observedSum, observable.WithName("sum"))

	var plainArgs []point
	plain := observable.Func(func(p point) error {
		plainArgs = append(plainArgs, p)
		return nil
	})

	var source observable.Observable
	var identifiedArgs []point
	identifying := observable.FuncFrom(func(src observable.Observable, p point) error {
		source = src
		identifiedArgs = append(identifiedArgs, p)
		return nil
	})

	f.Add(plain)
	f.AddIdentified(identifying)

	_, err := f.Call(point{X: 1, Y: 2})
	require.NoError(t, err)

	require.NotNil(t, source)
	assert.True(t, source.Equal(f))
	assert.Equal(t, "sum", source.Name())
	assert.Nil(t, source.Owner())
	assert.Equal(t, []point{{X: 1, Y: 2}}, plainArgs)
	assert.Equal(t, []point{{X: 1, Y: 2}}, identifiedArgs)
	runtime.KeepAlive(plain)
	runtime.KeepAlive(identifying)
}

func TestFunction_TargetErrorSkipsDispatch(t *testing.T) {
	boom := errors.New("target failed")
	f := observable.Wrap(func(point) (int, error) { return 0, boom })

	called := false
	h := observable.Func(func(point) error {
		called = true
		return nil
	})
	f.Add(h)

	_, err := f.Call(point{})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
	runtime.KeepAlive(h)
}

func TestFunction_ObserverFailureFailFast(t *testing.T) {
	f := observable.Wrap(observedSum)
	boom := errors.New("observer failed")

	var order []string
	first := observable.Func(func(point) error {
		order = append(order, "first")
		return boom
	})
	second := observable.Func(func(point) error {
		order = append(order, "second")
		return nil
	})
	f.Add(first)
	f.Add(second)

	got, err := f.Call(point{X: 2, Y: 2})
	assert.Equal(t, 4, got, "the target's result survives observer failure")
	assert.ErrorIs(t, err, domain.ErrObserverFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first"}, order)
	runtime.KeepAlive(first)
	runtime.KeepAlive(second)
}

func TestFunction_ObserverPanicPropagates(t *testing.T) {
	f := observable.Wrap(observedSum)
	h := observable.Func(func(point) error { panic("observer exploded") })
	f.Add(h)

	assert.PanicsWithValue(t, "observer exploded", func() {
		_, _ = f.Call(point{})
	})
	runtime.KeepAlive(h)
}

func TestFunction_Name(t *testing.T) {
	assert.Equal(t, "observedSum", observable.Wrap(observedSum).Name())
	assert.Equal(t, "custom", observable.Wrap(observedSum, observable.WithName("custom")).Name())
}

func TestFunction_ObservesFunction(t *testing.T) {
	var log []string
	outer := observable.Wrap(func(x string) (struct{}, error) {
		log = append(log, "outer"+x)
		return struct{}{}, nil
	})
	inner := observable.Wrap(func(x string) (struct{}, error) {
		log = append(log, "inner"+x)
		return struct{}{}, nil
	})
	tail := observable.Func(func(x string) error {
		log = append(log, "tail"+x)
		return nil
	})

	require.True(t, inner.Add(tail))
	require.True(t, outer.Add(inner))

	_, err := outer.Call("!")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer!", "inner!", "tail!"}, log)
	runtime.KeepAlive(inner)
	runtime.KeepAlive(tail)
}

func registerTransientHandler(f *observable.Function[point, int], called *atomic.Bool) {
	h := observable.Func(func(point) error {
		called.Store(true)
		return nil
	})
	f.Add(h)
}

func TestFunction_CollectedObserverIsPruned(t *testing.T) {
	f := observable.Wrap(observedSum)
	var called atomic.Bool
	registerTransientHandler(f, &called)
	require.Equal(t, 1, f.Len())

	testutils.RequireCollected(t, func() bool { return f.Len() == 0 })

	_, err := f.Call(point{})
	require.NoError(t, err)
	assert.False(t, called.Load())
}

func mutualObservers() (weak.Pointer[observable.Function[string, struct{}]], weak.Pointer[observable.Function[string, struct{}]]) {
	noop := func(string) (struct{}, error) { return struct{}{}, nil }
	left := observable.Wrap(noop, observable.WithName("left"))
	right := observable.Wrap(noop, observable.WithName("right"))
	left.Add(right)
	right.Add(left)
	return weak.Make(left), weak.Make(right)
}

func TestFunction_MutualObservationDoesNotRetain(t *testing.T) {
	left, right := mutualObservers()

	testutils.RequireCollected(t, func() bool { return left.Value() == nil && right.Value() == nil })
}
