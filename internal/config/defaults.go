package config

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Corpus: Corpus{
			TextDir: "texts",
		},
		Planner: Planner{
			Parallelism:  0,
			MaxUnitBytes: 2_000_000,
		},
		Pipeline: Pipeline{
			Workers:      0,
			CacheEntries: 256,
		},
		Storage: Storage{
			Enabled: false,
			DBPath:  "~/.corpuschunk/runs.db",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
