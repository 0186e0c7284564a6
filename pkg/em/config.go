package em

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxIters    = 100
	DefaultStopValue   = 1e-7
	DefaultConcurrency = 1
)

// Config holds the settings of a model run.
type Config struct {
	MaxIters    int     `yaml:"max_iters"`
	StopValue   float64 `yaml:"stop_value"`
	Concurrency int     `yaml:"concurrency"`
	// Restarts holds the initial parameters of every restart. No restart means one run with empty parameters.
	Restarts []Params `yaml:"restarts"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() *Config {
	return &Config{
		MaxIters:    DefaultMaxIters,
		StopValue:   DefaultStopValue,
		Concurrency: DefaultConcurrency,
	}
}

// LoadConfig reads a YAML config file. Missing fields keep their default value.
func LoadConfig(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", filename)
	}

	cfg := DefaultConfig()

	err = yaml.Unmarshal(content, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode config file %s", filename)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", filename)
	}

	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.MaxIters < 0 {
		return ErrNegativeMaxIters
	}

	if c.StopValue < 0 || math.IsNaN(c.StopValue) {
		return ErrNegativeStopValue
	}

	return nil
}

func (c *Config) restarts() []Params {
	if len(c.Restarts) == 0 {
		return []Params{{}}
	}

	return c.Restarts
}
