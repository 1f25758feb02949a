package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPath is read when Load is given an empty path. A missing default file is not an error.
const DefaultPath = "configs/config.yaml"

const envPrefix = "BOOKSTER"

var envPattern = regexp.MustCompile(`\$\{(\w+)(:([^}]*))?\}`)

// Load reads configuration in order: defaults, YAML file, BOOKSTER_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	optional := false
	if path == "" {
		path = DefaultPath
		optional = true
	}
	if err := loadConfigFile(v, path, optional); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// CLAUDE_API_KEY is honoured without the BOOKSTER_ prefix.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("CLAUDE_API_KEY")
	}
	return &cfg, nil
}

func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := v.ReadConfig(strings.NewReader(expandEnv(string(content)))); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// expandEnv replaces ${VAR} and ${VAR:default} placeholders.
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := envPattern.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		if sub[2] != "" {
			return sub[3]
		}
		return match
	})
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.request_timeout", "110s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.cert_file", "certs/server.crt")
	v.SetDefault("server.tls.key_file", "certs/server.key")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "claude-3-5-sonnet-latest")
	v.SetDefault("llm.timeout", "90s")
	v.SetDefault("llm.outline_max_tokens", 4000)
	v.SetDefault("llm.chapter_max_tokens", 2000)

	v.SetDefault("prompts.store", "memory")
	v.SetDefault("prompts.timeout", "5s")
	v.SetDefault("prompts.cache_ttl", "1m")
	v.SetDefault("prompts.file", "prompts.json")
	v.SetDefault("prompts.redis.addr", "localhost:6379")
	v.SetDefault("prompts.redis.password", "")
	v.SetDefault("prompts.redis.db", 0)
	v.SetDefault("prompts.redis.prefix", "bookster:settings:")
	v.SetDefault("prompts.postgres.dsn", "")
	v.SetDefault("prompts.postgres.table", "admin_settings")
	v.SetDefault("prompts.http.base_url", "")
	v.SetDefault("prompts.http.token", "")
	v.SetDefault("prompts.http.retry_count", 2)

	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.pdf_timeout", "60s")
	v.SetDefault("export.browser_path", "")
	v.SetDefault("export.index_ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
