package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/transient/pkg/transient"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Strategy kinds accepted in the kind field.
const (
	KindFixed       = "fixed"
	KindIncremental = "incremental"
	KindExponential = "exponential"
	KindBackOff     = "backoff"
)

// StrategyConfig describes one named strategy. Durations use Go syntax ("250ms", "1m30s").
// Unset fields take the defaults of the kind.
type StrategyConfig struct {
	Name           string `yaml:"name"`
	Kind           string `yaml:"kind"`
	RetryCount     *int   `yaml:"retry_count,omitempty"`
	FastFirstRetry *bool  `yaml:"fast_first_retry,omitempty"`

	// fixed
	Interval string `yaml:"interval,omitempty"`

	// incremental and backoff
	InitialInterval string `yaml:"initial_interval,omitempty"`
	Increment       string `yaml:"increment,omitempty"`

	// exponential
	MinBackoff   string `yaml:"min_backoff,omitempty"`
	MaxBackoff   string `yaml:"max_backoff,omitempty"`
	DeltaBackoff string `yaml:"delta_backoff,omitempty"`

	// backoff
	MaxInterval         string   `yaml:"max_interval,omitempty"`
	Multiplier          *float64 `yaml:"multiplier,omitempty"`
	RandomizationFactor *float64 `yaml:"randomization_factor,omitempty"`
}

// Config is the strategy configuration document.
type Config struct {
	Default      string            `yaml:"default,omitempty"`
	Strategies   []StrategyConfig  `yaml:"strategies,omitempty"`
	Technologies map[string]string `yaml:"technologies,omitempty"`
}

// ConfigFileName is the file looked up by Load.
const ConfigFileName = "transient.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads, validates and decodes a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse validates a YAML document against the schema and decodes it.
func Parse(data []byte) (*Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", transient.ErrInvalidConfig, err)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", transient.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Default returns the configuration used when no file is present:
// the built-in strategies only.
func Default() *Config {
	return &Config{Default: transient.DefaultStrategyName}
}

// DefaultName returns the configured default strategy name.
func (c *Config) DefaultName() string {
	if c.Default == "" {
		return transient.DefaultStrategyName
	}
	return c.Default
}
