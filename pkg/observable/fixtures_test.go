package observable_test

import (
	"testing"

	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/observable"
	"github.com/stretchr/testify/require"
)

var strategies = []domain.Strategy{
	domain.StrategyInstanceAttached,
	domain.StrategySideTable,
}

// Foo has an observable method bar, a plain method baz, and two methods that
// want to know who called them.
type Foo struct {
	observable.Slots
	name string
	buf  *[]string
}

func newFoo(name string, buf *[]string) *Foo {
	return &Foo{name: name, buf: buf}
}

func (f *Foo) record(s string) { *f.buf = append(*f.buf, f.name+s) }

func (f *Foo) bar(x string) (struct{}, error) {
	f.record("bar" + x)
	return struct{}{}, nil
}

func (f *Foo) baz(x string) error {
	f.record("baz" + x)
	return nil
}

func (f *Foo) milton(caller observable.Observable) (struct{}, error) {
	f.record("milton" + callerName(caller))
	return struct{}{}, nil
}

func (f *Foo) waldo(caller observable.Observable, _ string) error {
	f.record("waldo" + callerName(caller))
	return nil
}

func callerName(o observable.Observable) string {
	if foo, ok := o.Owner().(*Foo); ok {
		return foo.name
	}
	return o.Name()
}

// fooMethods holds the observable methods of Foo for one strategy.
type fooMethods struct {
	bar    *observable.Method[Foo, string, struct{}]
	milton *observable.Method[Foo, observable.Observable, struct{}]
}

func newFooMethods(t *testing.T, strategy domain.Strategy) fooMethods {
	t.Helper()
	bar, err := observable.NewMethod("bar", (*Foo).bar, observable.WithStrategy(strategy))
	require.NoError(t, err)
	milton, err := observable.NewMethod("milton", (*Foo).milton, observable.WithStrategy(strategy))
	require.NoError(t, err)
	return fooMethods{bar: bar, milton: milton}
}

// miltonObserver registers b.milton as an identifying observer of a string
// observable. The key matches fx.milton.Bind(b).
func (fx fooMethods) miltonObserver(b *Foo) observable.IdentifyingMethodObserver[string] {
	milton := fx.milton
	return observable.MethodFrom(b, "milton", func(f *Foo, src observable.Observable, _ string) error {
		_, err := milton.Call(f, src)
		return err
	})
}

func capturePanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}
