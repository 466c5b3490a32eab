// Package config is the on-disk configuration of the comunio CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"comunio-manager/internal/components/configutil"
	"comunio-manager/internal/components/telemetry"
	"comunio-manager/internal/db"
	"comunio-manager/internal/scrapers/comunio"

	"dario.cat/mergo"
)

const (
	DefaultDir      = "~/.comunio"
	DefaultSchedule = "0 6 * * *"

	EnvUsername = "COMUNIO_USERNAME"
	EnvPassword = "COMUNIO_PASSWORD"
)

type Config struct {
	Username  string           `json:"username"`
	Password  string           `json:"password"`
	BaseUrl   string           `json:"base_url"`
	Database  db.Config        `json:"database"`
	Schedule  string           `json:"schedule"`
	Telemetry telemetry.Config `json:"telemetry"`
}

// DefaultPath is where the config is read from when no path is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir, "config.json5")
}

// Defaults returns the values used for every field the config files leave
// empty.
func Defaults() Config {
	return Config{
		BaseUrl: comunio.DefaultBaseUrl,
		Database: db.Config{
			File: filepath.Join(DefaultDir, "history.db"),
		},
		Schedule: DefaultSchedule,
	}
}

// Load reads the config at path (and its local override). A missing file is
// not an error, the defaults and environment still apply.
func Load(path string) (Config, error) {
	expanded, err := configutil.ExpandHome(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := configutil.ReadConfig[Config](expanded)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = mergo.Merge(&cfg, Defaults())
	if err != nil {
		return Config{}, err
	}

	if username, ok := os.LookupEnv(EnvUsername); ok {
		cfg.Username = username
	}
	if password, ok := os.LookupEnv(EnvPassword); ok {
		cfg.Password = password
	}

	if cfg.Database.Url == "" {
		cfg.Database.File, err = configutil.ExpandHome(cfg.Database.File)
		if err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Credentials is the scraper options for this config.
func (c Config) Credentials() comunio.Options {
	return comunio.Options{
		BaseUrl:  c.BaseUrl,
		Username: c.Username,
		Password: c.Password,
	}
}
