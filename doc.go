/*
Package observed lets functions and methods notify observers when they are
called.

An observable runs its own code first, then every registered observer in
registration order with the same argument. Observers are held weakly: a
handler, an instance or another observable that is garbage collected drops
out of every registry without an explicit Discard, and two observables may
observe each other without leaking.

# Usage

	type Foo struct {
		observed.Slots
		name string
	}

	func (f *Foo) bar(x string) (struct{}, error) { ... }
	func (f *Foo) baz(x string) error { ... }

	var fooBar = observed.MustWrapMethod("bar", (*Foo).bar)

	func (f *Foo) Bar() observed.Bound[Foo, string, struct{}] { return fooBar.Bind(f) }

	a, b := &Foo{name: "a"}, &Foo{name: "b"}
	a.Bar().Add(b.Bar())
	a.Bar().Add(observable.MethodOf(b, "baz", (*Foo).baz))
	a.Bar().Call("x") // a.bar, then b.bar, then b.baz

The building blocks live in pkg/observable. This package re-exports the
common entry points.

# Persistence strategies

Per-instance registries live either on the instance (embed Slots, the
default) or in a side table owned by the method (WithStrategy(SideTable)),
which works for types that cannot be changed.
*/
package observed
