package domain

import "github.com/aretw0/observed/pkg/identity"

// RegistryEvent describes a change to one registry.
type RegistryEvent struct {
	Registry string       `json:"registry"`
	Key      identity.Key `json:"-"`
	Observer string       `json:"observer"`
	Size     int          `json:"size"`
}

// DispatchEvent describes one completed dispatch.
type DispatchEvent struct {
	Registry  string `json:"registry"`
	Snapshot  int    `json:"snapshot"`
	Delivered int    `json:"delivered"`
	Skipped   int    `json:"skipped"`
	Err       error  `json:"-"`
}

// RegistryHooks defines callbacks for registry observability.
// OnPrune runs on the runtime's cleanup goroutine.
type RegistryHooks struct {
	OnAdd      func(RegistryEvent)
	OnDiscard  func(RegistryEvent)
	OnPrune    func(RegistryEvent)
	OnDispatch func(DispatchEvent)
}

// Merge combines two hook sets, running the receiver first.
func (h RegistryHooks) Merge(other RegistryHooks) RegistryHooks {
	return RegistryHooks{
		OnAdd:      chain(h.OnAdd, other.OnAdd),
		OnDiscard:  chain(h.OnDiscard, other.OnDiscard),
		OnPrune:    chain(h.OnPrune, other.OnPrune),
		OnDispatch: chain(h.OnDispatch, other.OnDispatch),
	}
}

func chain[E any](first, second func(E)) func(E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	default:
		return func(e E) {
			first(e)
			second(e)
		}
	}
}
