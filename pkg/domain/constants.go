package domain

import (
	"fmt"
	"strings"
)

// Strategy selects where a method's per-instance registry lives.
type Strategy string

const (
	// StrategyInstanceAttached stores the registry on the instance itself.
	// The instance type must embed observable.Slots.
	StrategyInstanceAttached Strategy = "instance"
	// StrategySideTable stores registries in a table owned by the method,
	// keyed by weak instance identity.
	StrategySideTable Strategy = "side-table"
)

// DefaultStrategy is used when no strategy is configured.
const DefaultStrategy = StrategyInstanceAttached

// ParseStrategy resolves a strategy token. Accepted aliases: "instances" and
// "instance-attached" for the instance strategy, "descriptor" and "side_table"
// for the side table.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "instance", "instances", "instance-attached":
		return StrategyInstanceAttached, nil
	case "side-table", "side_table", "sidetable", "descriptor":
		return StrategySideTable, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrConfiguration, ErrUnknownStrategy, s)
	}
}

// Validate checks that s is one of the known strategies.
func (s Strategy) Validate() error {
	switch s {
	case StrategyInstanceAttached, StrategySideTable:
		return nil
	default:
		return fmt.Errorf("%w: %w: %q", ErrConfiguration, ErrUnknownStrategy, string(s))
	}
}
