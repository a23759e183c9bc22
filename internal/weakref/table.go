package weakref

import (
	"log/slog"
	"sync"
	"weak"

	"github.com/aretw0/observed/internal/logging"
)

// row holds one instance's value and the hook that removes it.
type row[T, V any] struct {
	owner weak.Pointer[T]
	value V
	stop  func()
}

// Table maps instance identity to a value without keeping any instance alive.
// A row is created on first access and removed when its instance is collected
// or when it is forgotten explicitly.
//
// Instances under 16 bytes without pointers come from the tiny allocator and
// may never be reported as collected; their rows stay until Delete or Clear.
type Table[T, V any] struct {
	mu     sync.Mutex
	rows   map[weak.Pointer[T]]*row[T, V]
	logger *slog.Logger
	label  string
}

// Option configures a Table.
type Option func(*tableConfig)

type tableConfig struct {
	logger *slog.Logger
	label  string
}

// WithLogger logs row creation and release at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *tableConfig) {
		c.logger = logger
	}
}

// WithLabel names the table in log records.
func WithLabel(label string) Option {
	return func(c *tableConfig) {
		c.label = label
	}
}

// NewTable creates an empty table.
func NewTable[T, V any](opts ...Option) *Table[T, V] {
	cfg := tableConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	return &Table[T, V]{
		rows:   make(map[weak.Pointer[T]]*row[T, V]),
		logger: cfg.logger,
		label:  cfg.label,
	}
}

// LoadOrCreate returns the value for owner, calling create for a first access.
// It reports whether the row already existed.
//
// A row whose owner no longer resolves while owner itself is in hand means a
// collection hook was lost; that is returned as ok=false with stale=true so
// the caller can treat it as a broken invariant.
func (t *Table[T, V]) LoadOrCreate(owner *T, create func() V) (value V, loaded bool, stale bool) {
	wp := weak.Make(owner)

	t.mu.Lock()
	defer t.mu.Unlock()

	if r, ok := t.rows[wp]; ok {
		if r.owner.Value() == nil {
			return r.value, false, true
		}
		return r.value, true, false
	}

	r := &row[T, V]{owner: wp, value: create()}
	r.stop = OnCollect(owner, func() { t.release(wp) })
	t.rows[wp] = r
	t.logger.Debug("instance row created", "table", t.label, "rows", len(t.rows))
	return r.value, false, false
}

// Load returns the value for owner without creating a row.
func (t *Table[T, V]) Load(owner *T) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[weak.Make(owner)]
	if !ok {
		var zero V
		return zero, false
	}
	return r.value, true
}

// Delete removes owner's row and cancels its collection hook.
func (t *Table[T, V]) Delete(owner *T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	wp := weak.Make(owner)
	r, ok := t.rows[wp]
	if !ok {
		return false
	}
	r.stop()
	delete(t.rows, wp)
	return true
}

// Clear removes every row.
func (t *Table[T, V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for wp, r := range t.rows {
		r.stop()
		delete(t.rows, wp)
	}
}

// Len returns the number of rows.
func (t *Table[T, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// release runs on the cleanup goroutine once the owner is gone.
func (t *Table[T, V]) release(wp weak.Pointer[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[wp]; !ok {
		return
	}
	delete(t.rows, wp)
	t.logger.Debug("instance row released", "table", t.label, "rows", len(t.rows))
}
