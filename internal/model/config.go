package model

import "time"

// Config is the full hawkdove configuration.
// Field tags serve both viper (mapstructure) and `config show`/`config init` (yaml).
type Config struct {
	Input        InputConfig        `yaml:"input" mapstructure:"input"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Segment      SegmentConfig      `yaml:"segment" mapstructure:"segment"`
	Predictor    PredictorConfig    `yaml:"predictor" mapstructure:"predictor"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Fetch        FetchConfig        `yaml:"fetch" mapstructure:"fetch"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the fetched documents
type InputConfig struct {
	TextDir string `yaml:"text_dir" mapstructure:"text_dir"` // Directory of extracted .txt documents
	RawDir  string `yaml:"raw_dir" mapstructure:"raw_dir"`   // Directory of downloaded originals
}

// OutputConfig controls the output writer
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`         // Directory for CSV/JSON tables
	Stub    bool   `yaml:"stub" mapstructure:"stub"`       // Write a neutral stub index when no data
	SQLite  string `yaml:"sqlite" mapstructure:"sqlite"`   // Optional sqlite database path
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"` // Print per-table paths
}

// SegmentConfig tunes the segmentation stage
type SegmentConfig struct {
	// DuplicatePolicy decides what happens when a minutes document repeats a
	// section title: "overwrite" (later wins) or "append".
	DuplicatePolicy string `yaml:"duplicate_policy" mapstructure:"duplicate_policy"`
}

// PredictorConfig selects and tunes the label predictor
type PredictorConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // lexicon, openai, anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"`       // seconds per request
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"` // sentences per predict call
	MaxLength int    `yaml:"max_length" mapstructure:"max_length"` // runes kept per sentence
}

// CacheConfig controls the prediction cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// HTTPConfig configures the document fetcher
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobot bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// RateLimitingConfig bounds outbound request rates per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// FetchConfig points the discoverer at the publishing site
type FetchConfig struct {
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	StatementsURL      string `yaml:"statements_url" mapstructure:"statements_url"`
	MinutesURLTemplate string `yaml:"minutes_url_template" mapstructure:"minutes_url_template"` // %d is the year
	YearsBack          int    `yaml:"years_back" mapstructure:"years_back"`
}

// ServerConfig configures the read-only index API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			TextDir: ".cache/text",
			RawDir:  ".cache/raw",
		},
		Output: OutputConfig{
			Dir:  "site/data",
			Stub: true,
		},
		Segment: SegmentConfig{
			DuplicatePolicy: "overwrite",
		},
		Predictor: PredictorConfig{
			Provider:  "lexicon",
			Timeout:   30,
			BatchSize: 16,
			MaxLength: 256,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".cache/labels",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "hawkdove/0.1 (+https://github.com/ppiankov/hawkdove)",
			MaxBodyBytes: 20_000_000,
			RespectRobot: true,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Fetch: FetchConfig{
			BaseURL:            "https://www.federalreserve.gov",
			StatementsURL:      "https://www.federalreserve.gov/monetarypolicy/fomccalendars.htm",
			MinutesURLTemplate: "https://www.federalreserve.gov/monetarypolicy/fomchistorical%d.htm",
			YearsBack:          6,
		},
		Server: ServerConfig{
			Addr: ":8090",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
