package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:             "http://localhost:5000",
			TimeoutSeconds:      30,
			OptionsCacheMinutes: 5,
		},
		Storage: StorageConfig{
			Path:              "~/.config/dataportal",
			SQLiteFile:        "dataportal.db",
			SQLiteJournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "dataportal.log",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
		Display: DisplayConfig{
			PerPage:    10,
			Color:      true,
			ChartWidth: 40,
		},
	}
}
