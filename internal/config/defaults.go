package config

const (
	defaultConfigPath           = "~/.config/holocron/config.toml"
	defaultDataDir              = "~/.local/share/holocron"
	defaultLogDir               = "~/.local/share/holocron/logs"
	defaultCatalogBaseURL       = "https://swapi.dev/api"
	defaultCatalogTimeoutMS     = 5000
	defaultCatalogUserAgent     = "holocron/dev"
	defaultEnvelopeSlots        = 4
	defaultCooldownSeconds      = 60
	defaultPurgeIntervalSeconds = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:   defaultCatalogBaseURL,
			TimeoutMS: defaultCatalogTimeoutMS,
			UserAgent: defaultCatalogUserAgent,
		},
		Envelopes: Envelopes{
			Slots:                defaultEnvelopeSlots,
			CooldownSeconds:      defaultCooldownSeconds,
			PurgeIntervalSeconds: defaultPurgeIntervalSeconds,
		},
		Storage: Storage{
			Backend: BackendFile,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
