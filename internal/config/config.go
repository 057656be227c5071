// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the soroban-trader configuration from files,
// environment variables and command-line flags using viper, and writes the
// default file on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/submit"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AppName names the config file and directories.
const AppName = "soroban-trader"

// EnvPrefix prefixes every environment override, e.g.
// SOROBAN_TRADER_DATABASE_DSN.
const EnvPrefix = "SOROBAN_TRADER"

// Config is the full application configuration.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	Language string `mapstructure:"language" yaml:"language"`
	// Wallet is the default wallet id for CLI commands.
	Wallet   string `mapstructure:"wallet" yaml:"wallet,omitempty"`
	Proposal struct {
		TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
	} `mapstructure:"proposal" yaml:"proposal"`
	Lock struct {
		// Backend is "memory" or "redis".
		Backend string `mapstructure:"backend" yaml:"backend"`
		Redis   struct {
			Addr     string `mapstructure:"addr" yaml:"addr,omitempty"`
			Password string `mapstructure:"password" yaml:"password,omitempty"`
			DB       int    `mapstructure:"db" yaml:"db"`
		} `mapstructure:"redis" yaml:"redis"`
		Expiry time.Duration `mapstructure:"expiry" yaml:"expiry"`
	} `mapstructure:"lock" yaml:"lock"`
	Submission struct {
		Endpoint string               `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
		Timeout  time.Duration        `mapstructure:"timeout" yaml:"timeout"`
		DryRun   bool                 `mapstructure:"dry_run" yaml:"dry_run"`
		Breaker  submit.BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
	} `mapstructure:"submission" yaml:"submission"`
	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
	} `mapstructure:"server" yaml:"server"`
	Telemetry struct {
		Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	} `mapstructure:"telemetry" yaml:"telemetry"`
	Sweep struct {
		Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	} `mapstructure:"sweep" yaml:"sweep"`
	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
}

// Defaults returns the values used for keys missing from every source.
func Defaults() map[string]any {
	return map[string]any{
		"database.type": "sqlite",
		"database.dsn":  "./soroban-trader.db",
		"language":      "en",
		"log.level":     "info",

		"proposal.ttl":   "24h",
		"sweep.interval": "1m",
		"server.addr":    ":8080",

		"lock.backend":  "memory",
		"lock.expiry":   "10s",
		"lock.redis.db": 0,

		"submission.timeout":                      "15s",
		"submission.dry_run":                      true,
		"submission.breaker.max_requests":         1,
		"submission.breaker.interval":             "1m",
		"submission.breaker.timeout":              "30s",
		"submission.breaker.consecutive_failures": 5,
	}
}

// GetConfigPath returns the full path of the user or system config file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "SorobanTrader")
		default:
			configDir = "/etc/" + AppName
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, AppName)
	}

	return filepath.Join(configDir, AppName+".yaml"), nil
}

// LoadConfig merges defaults, the config file, environment variables and the
// flags of cmd into a T. An explicit path takes precedence over the standard
// locations. A missing file is reported as viper.ConfigFileNotFoundError
// together with the values resolved from the other sources.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")

	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return c, err
		}
		notFound = err
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, notFound
}

// WriteConfigFile writes c as YAML to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}
	return WriteConfigFileTo(c, path)
}

// WriteConfigFileTo writes c as YAML to path, creating its directory.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may hold the redis password.
	return os.WriteFile(path, data, 0o600)
}
