package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/LazyTarget/Considition-2020/rules"
)

// Prefix is prepended to every environment variable name.
const Prefix = "CONSIDITION_"

// Config holds everything needed to play or inspect games.
type Config struct {
	APIKey       string        `env:"API_KEY"`
	Map          string        `env:"MAP"`
	BaseURL      string        `env:"BASE_URL"      envDefault:"https://game.considition.com/api"`
	Strategy     string        `env:"STRATEGY"      envDefault:"standard"`
	StrategyFile string        `env:"STRATEGY_FILE"`
	Building     string        `env:"BUILDING"`
	Seed         int64         `env:"SEED"`
	DB           string        `env:"DB"            envDefault:"considition.db"`
	Rate         float64       `env:"RATE"          envDefault:"5"`
	Timeout      time.Duration `env:"TIMEOUT"       envDefault:"30s"`
	LogLevel     string        `env:"LOG_LEVEL"     envDefault:"info"`
}

// Load reads the CONSIDITION_ environment variables over the defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports what playing a game needs but the config lacks.
// needMap is false for commands that only attach to existing games.
func (c Config) Validate(needMap bool) error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("api key is required (CONSIDITION_API_KEY or --api-key)"))
	}
	if needMap && c.Map == "" {
		errs = append(errs, errors.New("map is required (CONSIDITION_MAP or --map)"))
	}
	if c.StrategyFile == "" && !knownPreset(c.Strategy) {
		errs = append(errs, fmt.Errorf("unknown strategy %q, want one of %v", c.Strategy, rules.PresetNames()))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// StrategyLabel names the strategy in game history.
func (c Config) StrategyLabel() string {
	if c.StrategyFile != "" {
		return "file:" + c.StrategyFile
	}
	if c.Building != "" {
		return c.Strategy + ":" + c.Building
	}
	return c.Strategy
}

func knownPreset(name string) bool {
	if name == "" {
		return true
	}
	for _, p := range rules.PresetNames() {
		if p == name {
			return true
		}
	}
	return false
}
