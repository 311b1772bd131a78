package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds the HOLOCRON_* variables that take precedence over the
// config file. Pointer fields distinguish "unset" from zero values.
type envOverrides struct {
	CatalogBaseURL   *string `env:"CATALOG_BASE_URL"`
	CatalogTimeoutMS *int    `env:"CATALOG_TIMEOUT_MS"`
	StorageBackend   *string `env:"STORAGE_BACKEND"`
	StoragePath      *string `env:"STORAGE_PATH"`
	DataDir          *string `env:"DATA_DIR"`
	LogLevel         *string `env:"LOG_LEVEL"`
	LogFormat        *string `env:"LOG_FORMAT"`
}

const envPrefix = "HOLOCRON_"

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if overrides.CatalogBaseURL != nil {
		c.Catalog.BaseURL = *overrides.CatalogBaseURL
	}
	if overrides.CatalogTimeoutMS != nil {
		c.Catalog.TimeoutMS = *overrides.CatalogTimeoutMS
	}
	if overrides.StorageBackend != nil {
		c.Storage.Backend = *overrides.StorageBackend
	}
	if overrides.StoragePath != nil {
		c.Storage.Path = *overrides.StoragePath
	}
	if overrides.DataDir != nil {
		c.Paths.DataDir = *overrides.DataDir
	}
	if overrides.LogLevel != nil {
		c.Logging.Level = *overrides.LogLevel
	}
	if overrides.LogFormat != nil {
		c.Logging.Format = *overrides.LogFormat
	}
	return nil
}
