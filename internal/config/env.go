package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the process environment acquire reads.
type Env struct {
	Home       string `env:"ACQUIRE_HOME"`
	Session    string `env:"ACQUIRE_SESSION"`
	Postscript string `env:"ACQUIRE_POSTSCRIPT"`
	Debug      bool   `env:"ACQUIRE_DEBUG"`
	LogPath    string `env:"ACQUIRE_LOG" envDefault:"debug.log"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
