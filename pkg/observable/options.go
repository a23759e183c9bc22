package observable

import (
	"log/slog"

	"github.com/aretw0/observed/internal/logging"
	"github.com/aretw0/observed/pkg/domain"
)

// Option configures a Function or a Method.
type Option func(*settings)

type settings struct {
	name     string
	logger   *slog.Logger
	hooks    domain.RegistryHooks
	strategy domain.Strategy
}

// WithName overrides the name reported by Name. Functions default to the
// runtime symbol of their target.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLogger sets a structured logger. Registrations, discards and prunes are
// logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithHooks adds registry lifecycle hooks. Repeated calls are merged in order.
func WithHooks(hooks domain.RegistryHooks) Option {
	return func(s *settings) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithStrategy selects where a method keeps its per-instance registries.
// Functions ignore it.
func WithStrategy(strategy domain.Strategy) Option {
	return func(s *settings) {
		s.strategy = strategy
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:   logging.NewNop(),
		strategy: domain.DefaultStrategy,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s
}

// registryHooks puts debug logging ahead of the caller's hooks.
func (s settings) registryHooks() domain.RegistryHooks {
	logger := s.logger
	return domain.RegistryHooks{
		OnAdd: func(e domain.RegistryEvent) {
			logger.Debug("observer added", "observable", e.Registry, "observer", e.Observer, "size", e.Size)
		},
		OnDiscard: func(e domain.RegistryEvent) {
			logger.Debug("observer discarded", "observable", e.Registry, "observer", e.Observer, "size", e.Size)
		},
		OnPrune: func(e domain.RegistryEvent) {
			logger.Debug("observer pruned", "observable", e.Registry, "observer", e.Observer, "size", e.Size)
		},
		OnDispatch: func(e domain.DispatchEvent) {
			if e.Err != nil {
				logger.Debug("dispatch aborted", "observable", e.Registry, "delivered", e.Delivered, "error", e.Err)
			}
		},
	}.Merge(s.hooks)
}
