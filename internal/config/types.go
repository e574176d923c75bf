package config

import "time"

// LogFormat selects the zap encoder.
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

// Config is the top-level digiguide configuration, corresponding to .digiguide.yml.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Data       DataConfig       `yaml:"data" koanf:"data"`
	Locale     LocaleConfig     `yaml:"locale" koanf:"locale"`
	Pagination PaginationConfig `yaml:"pagination" koanf:"pagination"`
	Search     SearchConfig     `yaml:"search" koanf:"search"`
	Team       TeamConfig       `yaml:"team" koanf:"team"`
	Images     ImagesConfig     `yaml:"images" koanf:"images"`
	Guides     GuidesConfig     `yaml:"guides" koanf:"guides"`
	DB         DBConfig         `yaml:"db" koanf:"db"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port" koanf:"port"`
	AllowAll       bool          `yaml:"allow_all" koanf:"allow_all"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
}

// DataConfig points at the static data files.
type DataConfig struct {
	Dir   string `yaml:"dir" koanf:"dir"`
	Watch bool   `yaml:"watch" koanf:"watch"`
}

// LocaleConfig lists the languages the guide is served in.
type LocaleConfig struct {
	Default   string   `yaml:"default" koanf:"default"`
	Supported []string `yaml:"supported" koanf:"supported"`
}

// PaginationConfig bounds list endpoint page sizes.
type PaginationConfig struct {
	PerPage    int `yaml:"per_page" koanf:"per_page"`
	MaxPerPage int `yaml:"max_per_page" koanf:"max_per_page"`
}

// SearchWeights scales fuzzy scores per searchable field.
type SearchWeights struct {
	Name    float64 `yaml:"name" koanf:"name"`
	AltName float64 `yaml:"alt_name" koanf:"alt_name"`
	Slug    float64 `yaml:"slug" koanf:"slug"`
	Type    float64 `yaml:"type" koanf:"type"`
	Summary float64 `yaml:"summary" koanf:"summary"`
}

// SearchConfig configures the fuzzy search index.
type SearchConfig struct {
	Weights        SearchWeights `yaml:"weights" koanf:"weights"`
	SuggestLimit   int           `yaml:"suggest_limit" koanf:"suggest_limit"`
	MinQueryLength int           `yaml:"min_query_length" koanf:"min_query_length"`
}

// TeamConfig bounds the team builder.
type TeamConfig struct {
	MaxSize        int `yaml:"max_size" koanf:"max_size"`
	MemoryCapacity int `yaml:"memory_capacity" koanf:"memory_capacity"`
}

// ImagesConfig configures the image proxy and its disk cache.
type ImagesConfig struct {
	Upstream        string        `yaml:"upstream" koanf:"upstream"`
	AllowedHosts    []string      `yaml:"allowed_hosts" koanf:"allowed_hosts"`
	CacheDir        string        `yaml:"cache_dir" koanf:"cache_dir"`
	TTL             time.Duration `yaml:"ttl" koanf:"ttl"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" koanf:"upstream_timeout"`
	RPS             float64       `yaml:"rps" koanf:"rps"`
	MaxBytes        int64         `yaml:"max_bytes" koanf:"max_bytes"`
}

// GuidesConfig locates the markdown strategy guides.
type GuidesConfig struct {
	Dir     string   `yaml:"dir" koanf:"dir"`
	Include []string `yaml:"include" koanf:"include"`
}

// DBConfig locates the SQLite database for saved teams.
type DBConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}
