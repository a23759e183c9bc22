package observable

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/identity"
	"github.com/aretw0/observed/pkg/registry"
)

// Function is an observable free function. Calling it runs the target, then
// every registered observer with the same arguments.
type Function[A, R any] struct {
	name   string
	target func(A) (R, error)
	reg    *registry.Registry[A]
}

// Wrap makes target observable.
func Wrap[A, R any](target func(A) (R, error), opts ...Option) *Function[A, R] {
	s := newSettings(opts)
	name := s.name
	if name == "" {
		name = symbolName(target)
	}
	return &Function[A, R]{
		name:   name,
		target: target,
		reg:    registry.New[A](registry.WithName(name), registry.WithHooks(s.registryHooks())),
	}
}

// Call runs the target and then dispatches to the observers. If the target
// fails, no observer runs. The target's result is returned even when an
// observer fails; the error then wraps domain.ErrObserverFailed.
func (f *Function[A, R]) Call(args A) (R, error) {
	result, err := f.target(args)
	if err != nil {
		return result, err
	}
	return result, f.reg.Dispatch(f, args)
}

// Add registers o. It returns false if o is already registered.
func (f *Function[A, R]) Add(o Observer[A]) bool {
	return f.reg.Add(o, false)
}

// AddIdentified registers o so that it receives f as its first argument.
func (f *Function[A, R]) AddIdentified(o IdentifyingObserver[A]) bool {
	return f.reg.Add(o, true)
}

// Discard unregisters o and reports whether it was registered.
func (f *Function[A, R]) Discard(o identity.Identifiable) bool {
	return f.reg.Discard(o)
}

// Len returns the number of registered observers.
func (f *Function[A, R]) Len() int { return f.reg.Len() }

// Observers returns the registered keys in dispatch order.
func (f *Function[A, R]) Observers() []identity.Key { return f.reg.Keys() }

func (f *Function[A, R]) Name() string { return f.name }

// Owner is always nil for a free function.
func (f *Function[A, R]) Owner() any { return nil }

func (f *Function[A, R]) Equal(other Observable) bool {
	o, ok := other.(*Function[A, R])
	return ok && o == f
}

// Key makes a Function usable as an observer of another observable.
func (f *Function[A, R]) Key() identity.Key { return identity.FunctionOf(f) }

func (f *Function[A, R]) Ref() registry.Ref[A] {
	return registry.NewRef(f, func(f *Function[A, R]) registry.Callback[A] {
		return func(_ domain.Observable, args A) error {
			_, err := f.Call(args)
			return err
		}
	})
}

func (*Function[A, R]) receivesArgs() {}

// symbolName returns the unqualified runtime name of fn, e.g. "observedFunc"
// or "TestX.func1".
func symbolName(fn any) string {
	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return "func"
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
