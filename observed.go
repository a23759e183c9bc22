package observed

import (
	_ "embed"

	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/observable"
)

// Version is the library version.
//
//go:embed VERSION
var Version string

// Persistence strategies for WrapMethod.
const (
	Instances = domain.StrategyInstanceAttached
	SideTable = domain.StrategySideTable
)

type (
	// Option configures an observable.
	Option = observable.Option
	// Slots must be embedded by types using the Instances strategy.
	Slots = observable.Slots
	// Bound is a method bound to one instance.
	Bound[T, A, R any] = observable.Bound[T, A, R]
)

var (
	WithName     = observable.WithName
	WithLogger   = observable.WithLogger
	WithHooks    = observable.WithHooks
	WithStrategy = observable.WithStrategy
)

// WrapFunction makes target observable.
func WrapFunction[A, R any](target func(A) (R, error), opts ...Option) *observable.Function[A, R] {
	return observable.Wrap(target, opts...)
}

// WrapMethod makes the method fn observable on every instance of T.
func WrapMethod[T, A, R any](name string, fn func(*T, A) (R, error), opts ...Option) (*observable.Method[T, A, R], error) {
	return observable.NewMethod(name, fn, opts...)
}

// MustWrapMethod is WrapMethod for package-level declarations.
func MustWrapMethod[T, A, R any](name string, fn func(*T, A) (R, error), opts ...Option) *observable.Method[T, A, R] {
	return observable.MustMethod(name, fn, opts...)
}
