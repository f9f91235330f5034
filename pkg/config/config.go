// Package config loads timerace settings from the environment.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config describes the timing of a scenario run. Step is the unit every
// scenario offset is expressed in; the defaults reproduce the one-second
// cadence of the demonstrations.
type Config struct {
	Step          time.Duration `env:"TIMERACE_STEP"           envDefault:"1s"`
	InitialDelay  time.Duration `env:"TIMERACE_INITIAL_DELAY"  envDefault:"1s"`
	Period        time.Duration `env:"TIMERACE_PERIOD"         envDefault:"1s"`
	Tasks         int           `env:"TIMERACE_TASKS"          envDefault:"5"`
	Observe       time.Duration `env:"TIMERACE_OBSERVE"        envDefault:"15s"`
	TraceCapacity int           `env:"TIMERACE_TRACE_CAPACITY" envDefault:"1024"`
}

// Default returns the configuration used when the environment sets nothing.
func Default() Config {
	return Config{
		Step:          time.Second,
		InitialDelay:  time.Second,
		Period:        time.Second,
		Tasks:         5,
		Observe:       15 * time.Second,
		TraceCapacity: 1024,
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive, got %s", c.Step)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial delay must not be negative, got %s", c.InitialDelay)
	}
	if c.Period <= 0 {
		return fmt.Errorf("period must be positive, got %s", c.Period)
	}
	if c.Tasks <= 0 {
		return fmt.Errorf("tasks must be positive, got %d", c.Tasks)
	}
	return nil
}

// Scale converts an offset given in thousandths of a step, the unit the
// scenarios are written in, into a duration.
func (c Config) Scale(milli int) time.Duration {
	return time.Duration(milli) * c.Step / 1000
}

// WithStep rescales the initial delay and period along with the step.
func (c Config) WithStep(step time.Duration) Config {
	if c.Step > 0 {
		ratio := float64(step) / float64(c.Step)
		c.InitialDelay = rescale(c.InitialDelay, ratio)
		c.Period = rescale(c.Period, ratio)
	}
	c.Step = step
	return c
}

func rescale(d time.Duration, ratio float64) time.Duration {
	return time.Duration(math.Round(float64(d) * ratio))
}
