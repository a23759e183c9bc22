package observable

import (
	"fmt"
	"runtime"
	"weak"

	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/identity"
	"github.com/aretw0/observed/pkg/registry"
)

// Bound is a method bound to one instance. It holds the instance weakly, so
// keeping a Bound (or registering it as an observer) never keeps the instance
// alive. Bound values are comparable: two binds of the same (instance,
// method) are ==, including binds taken before and after Method.Forget.
//
// The registry is looked up on every use, so a Bound always reaches the
// instance's current observers.
type Bound[T, A, R any] struct {
	method *Method[T, A, R]
	owner  weak.Pointer[T]
}

// Call runs the method on its instance, then dispatches to the observers.
// Calling a Bound whose instance was collected panics with domain.ErrDeadOwner.
func (b Bound[T, A, R]) Call(args A) (R, error) {
	owner := b.owner.Value()
	if owner == nil {
		panic(fmt.Errorf("%w: %s", domain.ErrDeadOwner, b.method.name))
	}
	return b.invoke(owner, args)
}

func (b Bound[T, A, R]) invoke(owner *T, args A) (R, error) {
	result, err := b.method.fn(owner, args)
	if err != nil {
		return result, err
	}
	err = b.method.registryFor(owner).Dispatch(b, args)
	runtime.KeepAlive(owner)
	return result, err
}

// current returns the instance's current registry, or nil once the instance
// has been collected.
func (b Bound[T, A, R]) current() *registry.Registry[A] {
	owner := b.owner.Value()
	if owner == nil {
		return nil
	}
	reg := b.method.registryFor(owner)
	runtime.KeepAlive(owner)
	return reg
}

// Add registers o. It returns false if o is already registered or the
// instance is gone.
func (b Bound[T, A, R]) Add(o Observer[A]) bool {
	reg := b.current()
	return reg != nil && reg.Add(o, false)
}

// AddIdentified registers o so that it receives b as its first argument.
func (b Bound[T, A, R]) AddIdentified(o IdentifyingObserver[A]) bool {
	reg := b.current()
	return reg != nil && reg.Add(o, true)
}

// Discard unregisters o and reports whether it was registered.
func (b Bound[T, A, R]) Discard(o identity.Identifiable) bool {
	reg := b.current()
	return reg != nil && reg.Discard(o)
}

// Len returns the number of registered observers.
func (b Bound[T, A, R]) Len() int {
	if reg := b.current(); reg != nil {
		return reg.Len()
	}
	return 0
}

// Observers returns the registered keys in dispatch order.
func (b Bound[T, A, R]) Observers() []identity.Key {
	if reg := b.current(); reg != nil {
		return reg.Keys()
	}
	return nil
}

func (b Bound[T, A, R]) Name() string { return b.method.name }

// Owner returns the *T, or nil once it has been collected.
func (b Bound[T, A, R]) Owner() any {
	if p := b.owner.Value(); p != nil {
		return p
	}
	return nil
}

func (b Bound[T, A, R]) Equal(other Observable) bool {
	o, ok := other.(Bound[T, A, R])
	return ok && o == b
}

// Key identifies b as an observer. It matches MethodOf on the same instance
// and name.
func (b Bound[T, A, R]) Key() identity.Key {
	if p := b.owner.Value(); p != nil {
		return identity.MethodOf(p, b.method.name)
	}
	return identity.Key{}
}

func (b Bound[T, A, R]) Ref() registry.Ref[A] {
	return registry.NewWeakRef(b.owner, func(owner *T) registry.Callback[A] {
		return func(_ domain.Observable, args A) error {
			_, err := b.invoke(owner, args)
			return err
		}
	})
}

func (Bound[T, A, R]) receivesArgs() {}
