// Package config loads bookster settings from YAML, the environment and defaults.
package config

import "time"

// Config is the root of the bookster configuration tree.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Prompts PromptsConfig `mapstructure:"prompts"`
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimit is the number of generation requests allowed per IP per minute.
	RateLimit  int       `mapstructure:"rate_limit"`
	AdminToken string    `mapstructure:"admin_token"`
	TLS        TLSConfig `mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type LLMConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	OutlineMaxTokens int64         `mapstructure:"outline_max_tokens"`
	ChapterMaxTokens int64         `mapstructure:"chapter_max_tokens"`
}

// PromptsConfig selects where prompt template overrides are read from.
type PromptsConfig struct {
	// Store is one of memory, file, redis, postgres or http.
	Store    string         `mapstructure:"store"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	CacheTTL time.Duration  `mapstructure:"cache_ttl"`
	File     string         `mapstructure:"file"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

type HTTPConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Token      string `mapstructure:"token"`
	RetryCount int    `mapstructure:"retry_count"`
}

type ExportConfig struct {
	Dir         string        `mapstructure:"dir"`
	PDFTimeout  time.Duration `mapstructure:"pdf_timeout"`
	BrowserPath string        `mapstructure:"browser_path"`

	// IndexTTL bounds how long download titles are remembered.
	IndexTTL time.Duration `mapstructure:"index_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
