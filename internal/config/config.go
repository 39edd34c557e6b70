// Package config loads the bot's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Every field has a usable
// default; the file and flags only override.
type Config struct {
	// BaseURL is the arbiter API root, e.g. "https://games.example.com/api".
	BaseURL string `yaml:"base_url"`
	// Token is the team's auth token, sent as X-Auth-Token.
	Token string `yaml:"token"`
	// MaxRPS caps outgoing requests per second.
	MaxRPS float64 `yaml:"max_rps"`

	// TickSec is the decision loop period in seconds.
	TickSec float64 `yaml:"tick_sec"`
	// MaxPath caps path length per move command.
	MaxPath int `yaml:"max_path"`
	// TimerThreshold is the fuse cutoff (seconds) for the danger map.
	TimerThreshold float64 `yaml:"timer_threshold"`

	// DefaultStrategy drives units without an explicit assignment.
	DefaultStrategy string `yaml:"default_strategy"`
	// AssignmentsPath is the JSON file persisting unit bindings.
	AssignmentsPath string `yaml:"assignments_path"`

	// ControlAddr is the local control HTTP listen address; empty
	// disables the control surface.
	ControlAddr string `yaml:"control_addr"`
	// ControlSecret signs operator tokens for mutating control
	// endpoints; empty leaves them open (local use).
	ControlSecret string `yaml:"control_secret"`

	// BoosterMode is off, safe or greedy.
	BoosterMode string `yaml:"booster_mode"`
	// BoosterEvery is how many ticks pass between shop polls.
	BoosterEvery int `yaml:"booster_every"`
	// BoosterReserve is how many points to keep unspent.
	BoosterReserve int `yaml:"booster_reserve"`

	// Quiet suppresses per-tick command logging.
	Quiet bool `yaml:"quiet"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:         "http://localhost:8080/api",
		MaxRPS:          2.0,
		TickSec:         1.0,
		MaxPath:         30,
		TimerThreshold:  2.5,
		DefaultStrategy: "safe_bomber",
		AssignmentsPath: "assignments.json",
		ControlAddr:     "127.0.0.1:8090",
		BoosterMode:     "off",
		BoosterEvery:    10,
		BoosterReserve:  0,
	}
}

// Load reads path over the defaults. A missing file is not an error;
// the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.TickSec < 0.2 {
		c.TickSec = 0.2
	}
	if c.MaxPath <= 0 {
		c.MaxPath = 30
	}
	if c.TimerThreshold <= 0 {
		c.TimerThreshold = 2.5
	}
	switch c.BoosterMode {
	case "", "off", "safe", "greedy":
	default:
		return fmt.Errorf("config: unknown booster_mode %q", c.BoosterMode)
	}
	return nil
}
