package observable

import (
	"fmt"
	"sync"
	"weak"

	"github.com/aretw0/observed/internal/weakref"
	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/registry"
)

// Slots stores per-instance registries for methods using the
// instance-attached strategy. Embed it in the owning type:
//
//	type Foo struct {
//		observable.Slots
//		name string
//	}
type Slots struct {
	mu    sync.Mutex
	slots map[string]any
}

type slotHolder interface {
	observerSlots() *Slots
}

func (s *Slots) observerSlots() *Slots { return s }

// slot returns the registry stored under name, creating it on first use.
// A slot already holding a registry for another argument type is a defect.
func slot[A any](s *Slots, name string, create func() *registry.Registry[A]) *registry.Registry[A] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slots == nil {
		s.slots = make(map[string]any)
	}
	if v, ok := s.slots[name]; ok {
		reg, ok := v.(*registry.Registry[A])
		if !ok {
			panic(fmt.Errorf("%w: %q holds %T", domain.ErrSlotConflict, name, v))
		}
		return reg
	}
	reg := create()
	s.slots[name] = reg
	return reg
}

func (s *Slots) release(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.slots[name]
	if ok {
		delete(s.slots, name)
	}
	return v, ok
}

// Method makes a method observable independently for every instance of T.
// It never holds a strong reference to an instance.
//
// Pruning relies on the runtime noticing that an instance is unreachable.
// Instances smaller than 16 bytes that contain no pointers may share a
// tiny-allocator block with other objects and are then never reported as
// collected: their side-table rows and observer entries stay until Forget or
// Discard. Give such types a pointer field or enough size, or forget them
// explicitly.
//
// Declare one Method per method, usually as a package-level variable, and
// expose it through a named accessor on the owning type:
//
//	var fooBar = observable.MustMethod("bar", (*Foo).bar)
//
//	func (f *Foo) Bar() observable.Bound[Foo, string, struct{}] { return fooBar.Bind(f) }
type Method[T, A, R any] struct {
	name     string
	fn       func(*T, A) (R, error)
	strategy domain.Strategy
	table    *weakref.Table[T, *registry.Registry[A]]
	hooks    domain.RegistryHooks
}

// NewMethod returns a binding manager for fn. With the instance-attached
// strategy (the default), *T must embed Slots.
func NewMethod[T, A, R any](name string, fn func(*T, A) (R, error), opts ...Option) (*Method[T, A, R], error) {
	s := newSettings(opts)
	if name == "" {
		return nil, fmt.Errorf("%w: method name is required", domain.ErrConfiguration)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: method %s has no implementation", domain.ErrConfiguration, name)
	}
	if err := s.strategy.Validate(); err != nil {
		return nil, err
	}

	m := &Method[T, A, R]{
		name:     name,
		fn:       fn,
		strategy: s.strategy,
		hooks:    s.registryHooks(),
	}

	switch s.strategy {
	case domain.StrategyInstanceAttached:
		if _, ok := any((*T)(nil)).(slotHolder); !ok {
			return nil, fmt.Errorf("%w: %T must embed observable.Slots for the %s strategy",
				domain.ErrConfiguration, (*T)(nil), s.strategy)
		}
	case domain.StrategySideTable:
		m.table = weakref.NewTable[T, *registry.Registry[A]](
			weakref.WithLogger(s.logger),
			weakref.WithLabel(name),
		)
	}
	return m, nil
}

// MustMethod is NewMethod for package-level declarations; it panics on error.
func MustMethod[T, A, R any](name string, fn func(*T, A) (R, error), opts ...Option) *Method[T, A, R] {
	m, err := NewMethod(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Bind returns the observable form of the method on owner. Every Bind of the
// same owner shares one registry and the results compare equal.
func (m *Method[T, A, R]) Bind(owner *T) Bound[T, A, R] {
	if owner == nil {
		panic(fmt.Errorf("%w: %s", domain.ErrNilOwner, m.name))
	}
	m.registryFor(owner)
	return Bound[T, A, R]{method: m, owner: weak.Make(owner)}
}

// Call is the unbound form: it binds owner and calls the result, running
// the same dispatch.
func (m *Method[T, A, R]) Call(owner *T, args A) (R, error) {
	return m.Bind(owner).Call(args)
}

// Unbound returns Call as a plain function taking the instance first.
func (m *Method[T, A, R]) Unbound() func(*T, A) (R, error) {
	return m.Call
}

func (m *Method[T, A, R]) Name() string { return m.name }

func (m *Method[T, A, R]) Strategy() domain.Strategy { return m.strategy }

// Instances returns the number of side-table rows. It is always 0 for the
// instance-attached strategy.
func (m *Method[T, A, R]) Instances() int {
	if m.table == nil {
		return 0
	}
	return m.table.Len()
}

// Forget drops owner's registry and all of its observers. Bound values
// obtained earlier start over with a fresh registry on their next use.
func (m *Method[T, A, R]) Forget(owner *T) bool {
	if owner == nil {
		return false
	}
	switch m.strategy {
	case domain.StrategySideTable:
		reg, ok := m.table.Load(owner)
		if !ok {
			return false
		}
		reg.Clear()
		return m.table.Delete(owner)
	default:
		v, ok := any(owner).(slotHolder).observerSlots().release(m.name)
		if !ok {
			return false
		}
		if reg, ok := v.(*registry.Registry[A]); ok {
			reg.Clear()
		}
		return true
	}
}

func (m *Method[T, A, R]) registryFor(owner *T) *registry.Registry[A] {
	switch m.strategy {
	case domain.StrategySideTable:
		reg, _, stale := m.table.LoadOrCreate(owner, m.newRegistry)
		if stale {
			panic(fmt.Errorf("%w: instance row for %s outlived its owner", domain.ErrInvariant, m.name))
		}
		return reg
	default:
		return slot(any(owner).(slotHolder).observerSlots(), m.name, m.newRegistry)
	}
}

func (m *Method[T, A, R]) newRegistry() *registry.Registry[A] {
	return registry.New[A](registry.WithName(m.name), registry.WithHooks(m.hooks))
}
