// Package demo wires a small observer graph used by the CLI, the HTTP
// service and the examples.
package demo

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/aretw0/observed/pkg/identity"
	"github.com/aretw0/observed/pkg/observable"
)

// Line is one recorded call.
type Line struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type recorder struct {
	lines []Line
}

func (r *recorder) printf(source, format string, args ...any) {
	r.lines = append(r.lines, Line{Source: source, Text: fmt.Sprintf(format, args...)})
}

func (r *recorder) take() []Line {
	lines := r.lines
	r.lines = nil
	return lines
}

// Foo has one observable method, bar, and one plain method, baz.
type Foo struct {
	observable.Slots
	Name string
	rec  *recorder
}

func (f *Foo) bar(x string) (struct{}, error) {
	f.rec.printf(f.Name+".bar", "%s called bar with arg: %s", f.Name, x)
	return struct{}{}, nil
}

func (f *Foo) baz(x string) error {
	f.rec.printf(f.Name+".baz", "%s called baz with arg: %s", f.Name, x)
	return nil
}

// Scenario is the basic usage graph: a.bar is observed by a handler g, an
// observable function f, b.bar and b.baz, in that order.
type Scenario struct {
	mu  sync.Mutex
	rec *recorder

	A, B *Foo
	Bar  *observable.Method[Foo, string, struct{}]
	F    *observable.Function[string, struct{}]
	G    *observable.Handler[string]
}

// NewScenario builds the graph. opts apply to every observable in it.
func NewScenario(opts ...observable.Option) (*Scenario, error) {
	rec := &recorder{}

	bar, err := observable.NewMethod("bar", (*Foo).bar, opts...)
	if err != nil {
		return nil, err
	}

	s := &Scenario{
		rec: rec,
		A:   &Foo{Name: "a", rec: rec},
		B:   &Foo{Name: "b", rec: rec},
		Bar: bar,
		F: observable.Wrap(func(x string) (struct{}, error) {
			rec.printf("f", "f called with arg: %s", x)
			return struct{}{}, nil
		}, append(opts, observable.WithName("f"))...),
		G: observable.Func(func(x string) error {
			rec.printf("g", "g called with arg: %s", x)
			return nil
		}),
	}

	abar := s.Observed()
	abar.Add(s.G)
	abar.Add(s.F)
	abar.Add(bar.Bind(s.B))
	abar.Add(observable.MethodOf(s.B, "baz", (*Foo).baz))
	return s, nil
}

// Observed is a.bar.
func (s *Scenario) Observed() observable.Bound[Foo, string, struct{}] {
	return s.Bar.Bind(s.A)
}

// Call invokes a.bar(arg) and returns everything that ran, in order.
func (s *Scenario) Call(arg string) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.Observed().Call(arg)
	return s.rec.take(), err
}

// Observers lists the observers of a.bar in dispatch order.
func (s *Scenario) Observers() []identity.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Observed().Observers()
}

// Identify runs the identify-observed scenario: an identifying handler learns
// which observable called it.
func Identify(arg string, opts ...observable.Option) ([]Line, error) {
	rec := &recorder{}
	f := observable.Wrap(func(x string) (struct{}, error) {
		rec.printf("f", "f called with arg: %s", x)
		return struct{}{}, nil
	}, append(opts, observable.WithName("f"))...)

	g := observable.FuncFrom(func(src observable.Observable, x string) error {
		rec.printf("g", "g called by %s with arg: %s", src.Name(), x)
		return nil
	})
	f.AddIdentified(g)

	_, err := f.Call(arg)
	lines := rec.take()
	runtime.KeepAlive(g)
	return lines, err
}
