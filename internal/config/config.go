// Package config loads the eosr1 command configuration from a YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/mahdiidarabi/eosr1/internal/logging"
)

const (
	// ConfigPathEnv names the variable holding the default config file path.
	ConfigPathEnv = "EOSR1_CONFIG"

	defaultDotEnvPath = ".env"
)

// Config represents the overall command configuration.
type Config struct {
	PrivateKey      string         `yaml:"private_key" env:"EOSR1_PRIVATE_KEY" validate:"omitempty,startswith=PVT_R1_"`
	PublicKey       string         `yaml:"public_key" env:"EOSR1_PUBLIC_KEY" validate:"omitempty,startswith=PUB_R1_"`
	MaxSignAttempts int            `yaml:"max_sign_attempts" env:"EOSR1_MAX_SIGN_ATTEMPTS" env-default:"256" validate:"min=1,max=4096"`
	Workers         int            `yaml:"workers" env:"EOSR1_WORKERS" env-default:"0" validate:"min=0,max=1024"`
	Log             logging.Config `yaml:"log"`
}

// Load builds the configuration.
//
// Args:
//   - path: optional YAML file; empty means environment only
//   - dotEnvPath: optional .env file; empty means ".env" in the working directory.
//     A missing .env file is not an error.
//
// Returns:
//   - the validated configuration
func Load(path, dotEnvPath string) (*Config, error) {
	if dotEnvPath == "" {
		dotEnvPath = defaultDotEnvPath
	}
	if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field formats and bounds.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireKeys fails unless both keys are set.
func (c *Config) RequireKeys() error {
	if c.PrivateKey == "" || c.PublicKey == "" {
		return errors.New("both EOSR1_PRIVATE_KEY and EOSR1_PUBLIC_KEY are required")
	}
	return nil
}
