// Package config loads the settings of the dice command line tools.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Roll holds the defaults of the roll command. Flags override them.
type Roll struct {
	MaxDice       int `env:"GODICE_MAX_DICE" envDefault:"1048576"`
	MaxExplosions int `env:"GODICE_MAX_EXPLOSIONS" envDefault:"10000"`

	// Seed makes rolls reproducible. Zero picks a random seed.
	Seed     int64      `env:"GODICE_SEED"`
	LogLevel slog.Level `env:"GODICE_LOG_LEVEL" envDefault:"WARN"`
}

// LoadRoll reads the roll command defaults from the environment.
func LoadRoll() (Roll, error) {
	cfg, err := env.ParseAs[Roll]()
	if err != nil {
		return Roll{}, fmt.Errorf("load roll config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Roll{}, err
	}
	return cfg, nil
}

// Validate checks the limits.
func (c Roll) Validate() error {
	if c.MaxDice < 0 {
		return errors.New("GODICE_MAX_DICE must not be negative")
	}
	if c.MaxExplosions < 0 {
		return errors.New("GODICE_MAX_EXPLOSIONS must not be negative")
	}
	return nil
}
