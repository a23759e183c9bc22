package observed_test

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/observed"
	"github.com/aretw0/observed/pkg/observable"
)

type Foo struct {
	observed.Slots
	name string
}

func (f *Foo) bar(x string) (struct{}, error) {
	fmt.Printf("%s called bar with arg: %s\n", f.name, x)
	return struct{}{}, nil
}

func (f *Foo) baz(x string) error {
	fmt.Printf("%s called baz with arg: %s\n", f.name, x)
	return nil
}

var fooBar = observed.MustWrapMethod("bar", (*Foo).bar)

func (f *Foo) Bar() observed.Bound[Foo, string, struct{}] { return fooBar.Bind(f) }

// Example reproduces the classic basic usage: one method observed by a
// handler, an observable function and two methods of another instance.
func Example() {
	// 1. Two instances and a free function.
	a := &Foo{name: "a"}
	b := &Foo{name: "b"}
	f := observed.WrapFunction(func(x string) (struct{}, error) {
		fmt.Printf("f called with arg: %s\n", x)
		return struct{}{}, nil
	})
	g := observable.Func(func(x string) error {
		fmt.Printf("g called with arg: %s\n", x)
		return nil
	})

	// 2. Register observers of a.bar.
	a.Bar().Add(g)
	a.Bar().Add(f)
	a.Bar().Add(b.Bar())
	a.Bar().Add(observable.MethodOf(b, "baz", (*Foo).baz))

	// 3. Call it.
	if _, err := a.Bar().Call("banana"); err != nil {
		panic(err)
	}
	runtime.KeepAlive(b)
	runtime.KeepAlive(f)
	runtime.KeepAlive(g)
	// Output:
	// a called bar with arg: banana
	// g called with arg: banana
	// f called with arg: banana
	// b called bar with arg: banana
	// b called baz with arg: banana
}

// ExampleWrapFunction shows an observer that identifies its source.
func ExampleWrapFunction() {
	f := observed.WrapFunction(func(x string) (struct{}, error) {
		fmt.Printf("f called with arg: %s\n", x)
		return struct{}{}, nil
	}, observed.WithName("f"))

	g := observable.FuncFrom(func(src observable.Observable, x string) error {
		fmt.Printf("g called by %s with arg: %s\n", src.Name(), x)
		return nil
	})
	f.AddIdentified(g)

	_, _ = f.Call("banana")
	runtime.KeepAlive(g)
	// Output:
	// f called with arg: banana
	// g called by f with arg: banana
}

func ExampleVersion() {
	fmt.Println(strings.TrimSpace(observed.Version))
	// Output: 0.5.3
}
