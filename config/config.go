/*
Package config loads server configuration.

PURPOSE:
  Configuration comes from an optional YAML file ("recon.yaml" in the
  working directory unless a path is given), a .env file when present,
  and RECON_-prefixed environment variables, in ascending precedence.

ENVIRONMENT GATE:
  This tool verifies payout data against non-production APIs only.
  Loading fails when environment is prod/production.

KEYS:
  environment   dev | uat            (default dev)
  port          HTTP listen port     (default 8080)
  db_path       SQLite database path (default recon.db, ":memory:" ok)
*/
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds the server settings.
type Config struct {
	Environment string
	Port        int
	DBPath      string
}

// Load reads configuration from the given file path (optional), .env,
// and the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // best effort; absence is fine

	v := viper.New()
	v.SetDefault("environment", "dev")
	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "recon.db")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("recon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("RECON")
	v.AutomaticEnv()

	// A missing default config file is fine; an explicitly named one that
	// cannot be read is not (that surfaces as a path error, not a
	// ConfigFileNotFoundError).
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read")
		}
	}

	cfg := &Config{
		Environment: v.GetString("environment"),
		Port:        v.GetInt("port"),
		DBPath:      v.GetString("db_path"),
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if env == "prod" || env == "production" {
		return nil, eris.Errorf("config: unsupported environment %q, only dev and uat are allowed", cfg.Environment)
	}
	return cfg, nil
}
