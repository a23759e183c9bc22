// Package config loads observer settings from YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/observed/internal/logging"
	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/observable"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration.
type Config struct {
	// Strategy is the default persistence strategy for observable methods.
	Strategy domain.Strategy `mapstructure:"strategy" json:"strategy" yaml:"strategy"`
	LogLevel string          `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	// Metrics enables the Prometheus collectors.
	Metrics bool `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	// Listen is the address used by "observed serve".
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Strategy: domain.DefaultStrategy,
		LogLevel: "info",
		Metrics:  true,
		Listen:   ":8080",
	}
}

// Load reads path and decodes it over Default. A missing file yields the
// defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data over Default. ext selects the format: ".json" is JSON,
// anything else is YAML.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()

	raw := map[string]any{}
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("%w: failed to parse config json: %w", domain.ErrConfiguration, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("%w: failed to parse config yaml: %w", domain.ErrConfiguration, err)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       strategyHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	if err := cfg.Strategy.Validate(); err != nil {
		return cfg, err
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return cfg, nil
}

// strategyHook normalizes strategy aliases. Unknown tokens pass through and
// are rejected by Validate, which keeps the sentinel chain intact.
func strategyHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(domain.Strategy("")) || from.Kind() != reflect.String {
		return data, nil
	}
	if s, err := domain.ParseStrategy(reflect.ValueOf(data).String()); err == nil {
		return s, nil
	}
	return data, nil
}

// Logger builds the application logger for LogLevel.
func (c Config) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return logging.New(level), nil
}

// Options renders the configuration as observable options. extra are
// appended and win over the configured values.
func (c Config) Options(extra ...observable.Option) ([]observable.Option, error) {
	if err := c.Strategy.Validate(); err != nil {
		return nil, err
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}
	opts := []observable.Option{
		observable.WithStrategy(c.Strategy),
		observable.WithLogger(logger),
	}
	return append(opts, extra...), nil
}
