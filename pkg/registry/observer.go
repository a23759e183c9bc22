package registry

import (
	"weak"

	"github.com/aretw0/observed/internal/weakref"
	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/identity"
)

// Callback is a resolved, callable observer. observed is nil unless the entry
// was registered with passObserved.
type Callback[A any] func(observed domain.Observable, args A) error

// Ref is a non-owning handle to an observer.
type Ref[A any] interface {
	// Resolve returns the callback while the observer's owner is alive.
	Resolve() (Callback[A], bool)
	// OnCollect attaches fn to the owner's collection. It reports false when
	// the owner is already gone.
	OnCollect(fn func()) (stop func(), ok bool)
}

// Observer is anything a Registry can hold.
type Observer[A any] interface {
	identity.Identifiable
	Ref() Ref[A]
}

type weakRef[T, A any] struct {
	ptr  weak.Pointer[T]
	bind func(*T) Callback[A]
}

// NewRef returns a Ref that holds p weakly. bind turns the resolved owner into
// a callback at dispatch time; it must not capture p.
func NewRef[T, A any](p *T, bind func(*T) Callback[A]) Ref[A] {
	return weakRef[T, A]{ptr: weak.Make(p), bind: bind}
}

func (w weakRef[T, A]) Resolve() (Callback[A], bool) {
	p := w.ptr.Value()
	if p == nil {
		return nil, false
	}
	return w.bind(p), true
}

func (w weakRef[T, A]) OnCollect(fn func()) (func(), bool) {
	p := w.ptr.Value()
	if p == nil {
		return nil, false
	}
	return weakref.OnCollect(p, fn), true
}

// NewWeakRef is NewRef for callers that already hold only a weak pointer.
func NewWeakRef[T, A any](ptr weak.Pointer[T], bind func(*T) Callback[A]) Ref[A] {
	return weakRef[T, A]{ptr: ptr, bind: bind}
}
