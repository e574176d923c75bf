package config

import "time"

// DefaultSupportedLocales are the languages the guide ships with.
var DefaultSupportedLocales = []string{"en", "ja"}

// DefaultGuideIncludes are the doublestar globs selecting guide pages.
var DefaultGuideIncludes = []string{"**/*.md"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowAll:       false,
			RequestTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			Dir:   "data",
			Watch: false,
		},
		Locale: LocaleConfig{
			Default:   "en",
			Supported: append([]string(nil), DefaultSupportedLocales...),
		},
		Pagination: PaginationConfig{
			PerPage:    50,
			MaxPerPage: 200,
		},
		Search: SearchConfig{
			Weights: SearchWeights{
				Name:    1.0,
				AltName: 0.8,
				Slug:    0.6,
				Type:    0.3,
				Summary: 0.2,
			},
			SuggestLimit:   8,
			MinQueryLength: 2,
		},
		Team: TeamConfig{
			MaxSize:        6,
			MemoryCapacity: 60,
		},
		Images: ImagesConfig{
			Upstream:        "https://images.digiguide.dev/",
			AllowedHosts:    []string{"images.digiguide.dev"},
			CacheDir:        ".cache/images",
			TTL:             7 * 24 * time.Hour,
			UpstreamTimeout: 10 * time.Second,
			RPS:             10,
			MaxBytes:        5 << 20,
		},
		Guides: GuidesConfig{
			Dir:     "guides",
			Include: append([]string(nil), DefaultGuideIncludes...),
		},
		DB: DBConfig{
			Path: ".cache/digiguide.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatJSON,
		},
	}
}
