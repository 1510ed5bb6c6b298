package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	errs "github.com/edgard/avitobridge/internal/errors"
)

// LoadConfig loads and validates configuration from:
//  1. Default values
//  2. configPath, when non-empty (a missing file is an error only if the
//     path was given explicitly)
//  3. envFile, when present; variables already set in the environment win
//  4. AVITOBRIDGE_* environment variables
func LoadConfig(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NewConfigError("failed to load env file "+envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.NewConfigError("failed to read config file "+configPath, err)
		}
		slog.Debug("Configuration file loaded", "path", configPath)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags of the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return errs.NewValidationError("invalid configuration: "+strings.Join(fields, ", "), err)
		}
		return errs.NewValidationError("invalid configuration", err)
	}
	return nil
}

// DefaultEnvFile returns ".env" when it exists in the working directory.
func DefaultEnvFile() string {
	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}
	return ""
}
