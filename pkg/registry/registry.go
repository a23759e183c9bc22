// Package registry implements the callback registry behind every observable:
// an insertion-ordered set of weakly held observers keyed by identity.
package registry

import (
	"fmt"
	"sync"
	"weak"

	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/identity"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// entry is one registration. Once removed it is never reinserted; a fresh Add
// creates a new entry.
type entry[A any] struct {
	key          identity.Key
	ref          Ref[A]
	passObserved bool
	stop         func()
}

// Registry is an identity-keyed, insertion-ordered set of observers.
//
// It holds no strong reference to any observer or owner. Entries leave the
// registry through Discard, Clear, or the collection hook attached to the
// observer's owner.
//
// The mutex only makes single-entry mutations atomic with respect to
// collection hooks, which the runtime runs on its own goroutine. Callers that
// add, discard and dispatch from several goroutines must serialize those calls
// themselves; no ordering is promised between them.
type Registry[A any] struct {
	mu      sync.Mutex
	entries *orderedmap.OrderedMap[identity.Key, *entry[A]]
	name    string
	hooks   domain.RegistryHooks
}

// Option configures a Registry.
type Option func(*config)

type config struct {
	name  string
	hooks domain.RegistryHooks
}

// WithName labels the registry in hook events.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.RegistryHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// New creates an empty registry.
func New[A any](opts ...Option) *Registry[A] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry[A]{
		entries: orderedmap.New[identity.Key, *entry[A]](),
		name:    cfg.name,
		hooks:   cfg.hooks,
	}
}

// Name returns the label given with WithName.
func (r *Registry[A]) Name() string {
	return r.name
}

// Add registers o. It returns false if an observer with the same key is
// already registered, or if o's owner no longer exists. Adding twice never
// produces double delivery.
func (r *Registry[A]) Add(o Observer[A], passObserved bool) bool {
	key := o.Key()

	r.mu.Lock()
	if _, exists := r.entries.Get(key); exists {
		r.mu.Unlock()
		return false
	}

	ref := o.Ref()
	e := &entry[A]{key: key, ref: ref, passObserved: passObserved}
	stop, ok := ref.OnCollect(r.finalizer(e))
	if !ok {
		r.mu.Unlock()
		return false
	}
	e.stop = stop
	r.entries.Set(key, e)
	size := r.entries.Len()
	r.mu.Unlock()

	r.emit(r.hooks.OnAdd, key, size)
	return true
}

// Discard removes o if present and reports whether a removal happened.
func (r *Registry[A]) Discard(o identity.Identifiable) bool {
	return r.DiscardKey(o.Key())
}

// DiscardKey removes the entry registered under key.
func (r *Registry[A]) DiscardKey(key identity.Key) bool {
	r.mu.Lock()
	e, ok := r.entries.Delete(key)
	if !ok {
		r.mu.Unlock()
		return false
	}
	e.stop()
	size := r.entries.Len()
	r.mu.Unlock()

	r.emit(r.hooks.OnDiscard, key, size)
	return true
}

// Has reports whether o is registered.
func (r *Registry[A]) Has(o identity.Identifiable) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries.Get(o.Key())
	return ok
}

// Len returns the number of registered observers.
func (r *Registry[A]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Len()
}

// Keys returns the registered keys in insertion order.
func (r *Registry[A]) Keys() []identity.Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]identity.Key, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clear removes every entry and cancels their collection hooks. Each removal
// is reported to OnDiscard in insertion order.
func (r *Registry[A]) Clear() {
	r.mu.Lock()
	keys := make([]identity.Key, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.stop()
		keys = append(keys, pair.Key)
	}
	r.entries = orderedmap.New[identity.Key, *entry[A]]()
	r.mu.Unlock()

	for i, key := range keys {
		r.emit(r.hooks.OnDiscard, key, len(keys)-i-1)
	}
}

// Dispatch invokes every live observer in insertion order.
//
// The set of observers is copied before the first call, so observers added or
// discarded while the dispatch runs only affect later dispatches. An entry
// whose owner was collected but whose hook has not run yet is skipped. The
// first observer error stops the dispatch and is returned wrapped in
// domain.ErrObserverFailed.
func (r *Registry[A]) Dispatch(observed domain.Observable, args A) error {
	snapshot := r.snapshot()

	var (
		err       error
		delivered int
		skipped   int
	)
	for _, e := range snapshot {
		cb, ok := e.ref.Resolve()
		if !ok {
			skipped++
			continue
		}

		var src domain.Observable
		if e.passObserved {
			src = observed
		}
		if cbErr := cb(src, args); cbErr != nil {
			err = fmt.Errorf("%w: %s: %w", domain.ErrObserverFailed, e.key, cbErr)
			break
		}
		delivered++
	}

	if r.hooks.OnDispatch != nil {
		r.hooks.OnDispatch(domain.DispatchEvent{
			Registry:  r.name,
			Snapshot:  len(snapshot),
			Delivered: delivered,
			Skipped:   skipped,
			Err:       err,
		})
	}
	return err
}

func (r *Registry[A]) snapshot() []entry[A] {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]entry[A], 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		snapshot = append(snapshot, *pair.Value)
	}
	return snapshot
}

// finalizer builds the collection hook for e. It holds the registry weakly so
// a hook never extends the registry's lifetime.
func (r *Registry[A]) finalizer(e *entry[A]) func() {
	wr := weak.Make(r)
	return func() {
		if reg := wr.Value(); reg != nil {
			reg.prune(e)
		}
	}
}

// prune removes e if it is still the live entry for its key. It is idempotent
// and never panics.
func (r *Registry[A]) prune(e *entry[A]) {
	r.mu.Lock()
	current, ok := r.entries.Get(e.key)
	if !ok || current != e {
		r.mu.Unlock()
		return
	}
	r.entries.Delete(e.key)
	size := r.entries.Len()
	r.mu.Unlock()

	defer func() { _ = recover() }()
	r.emit(r.hooks.OnPrune, e.key, size)
}

func (r *Registry[A]) emit(hook func(domain.RegistryEvent), key identity.Key, size int) {
	if hook == nil {
		return
	}
	hook(domain.RegistryEvent{
		Registry: r.name,
		Key:      key,
		Observer: key.String(),
		Size:     size,
	})
}
