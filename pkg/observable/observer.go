package observable

import (
	"fmt"

	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/identity"
	"github.com/aretw0/observed/pkg/registry"
)

// Observable is the reference identifying observers receive.
type Observable = domain.Observable

// Observer is registered with Add and receives only the call arguments.
type Observer[A any] interface {
	registry.Observer[A]
	receivesArgs()
}

// IdentifyingObserver is registered with AddIdentified and receives the
// observable as a leading argument.
type IdentifyingObserver[A any] interface {
	registry.Observer[A]
	receivesObserved()
}

// Handler is a free-function observer. Its identity is the handle itself, so
// keep the *Handler to discard it later; dropping every reference to it
// unregisters it once it is collected.
type Handler[A any] struct {
	fn func(A) error
}

// Func wraps fn as an observer.
func Func[A any](fn func(A) error) *Handler[A] {
	return &Handler[A]{fn: fn}
}

func (h *Handler[A]) Key() identity.Key { return identity.FunctionOf(h) }

func (h *Handler[A]) Ref() registry.Ref[A] {
	return registry.NewRef(h, func(h *Handler[A]) registry.Callback[A] {
		return func(_ domain.Observable, args A) error { return h.fn(args) }
	})
}

func (*Handler[A]) receivesArgs() {}

// IdentifyingHandler is a Handler that also receives the observable.
type IdentifyingHandler[A any] struct {
	fn func(Observable, A) error
}

// FuncFrom wraps fn as an identifying observer.
func FuncFrom[A any](fn func(Observable, A) error) *IdentifyingHandler[A] {
	return &IdentifyingHandler[A]{fn: fn}
}

func (h *IdentifyingHandler[A]) Key() identity.Key { return identity.FunctionOf(h) }

func (h *IdentifyingHandler[A]) Ref() registry.Ref[A] {
	return registry.NewRef(h, func(h *IdentifyingHandler[A]) registry.Callback[A] {
		return func(src domain.Observable, args A) error { return h.fn(src, args) }
	})
}

func (*IdentifyingHandler[A]) receivesObserved() {}

// MethodObserver is a method bound to an instance it does not keep alive.
// Any two MethodObservers for the same (owner, name) are the same observer.
type MethodObserver[A any] struct {
	key identity.Key
	ref registry.Ref[A]
}

// MethodOf binds fn to owner under name. fn is usually a method expression
// such as (*Foo).baz.
//
// The entry is pruned when owner is collected. An owner under 16 bytes with
// no pointers may never be reported as collected, so discard such observers
// explicitly.
func MethodOf[T, A any](owner *T, name string, fn func(*T, A) error) MethodObserver[A] {
	if owner == nil {
		panic(fmt.Errorf("%w: %s", domain.ErrNilOwner, name))
	}
	return MethodObserver[A]{
		key: identity.MethodOf(owner, name),
		ref: registry.NewRef(owner, func(p *T) registry.Callback[A] {
			return func(_ domain.Observable, args A) error { return fn(p, args) }
		}),
	}
}

func (m MethodObserver[A]) Key() identity.Key    { return m.key }
func (m MethodObserver[A]) Ref() registry.Ref[A] { return m.ref }
func (MethodObserver[A]) receivesArgs()          {}

// IdentifyingMethodObserver is a MethodObserver that also receives the observable.
type IdentifyingMethodObserver[A any] struct {
	key identity.Key
	ref registry.Ref[A]
}

// MethodFrom binds fn to owner under name as an identifying observer.
func MethodFrom[T, A any](owner *T, name string, fn func(*T, Observable, A) error) IdentifyingMethodObserver[A] {
	if owner == nil {
		panic(fmt.Errorf("%w: %s", domain.ErrNilOwner, name))
	}
	return IdentifyingMethodObserver[A]{
		key: identity.MethodOf(owner, name),
		ref: registry.NewRef(owner, func(p *T) registry.Callback[A] {
			return func(src domain.Observable, args A) error { return fn(p, src, args) }
		}),
	}
}

func (m IdentifyingMethodObserver[A]) Key() identity.Key    { return m.key }
func (m IdentifyingMethodObserver[A]) Ref() registry.Ref[A] { return m.ref }
func (IdentifyingMethodObserver[A]) receivesObserved()      {}
