package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                    int    `env:"PORT" envDefault:"8080"`
	RedisURL                string `env:"REDIS_URL,required"`
	DatabaseURL             string `env:"DATABASE_URL"`
	WordListURL             string `env:"WORD_LIST_URL"`
	OracleAPIURL            string `env:"ORACLE_API_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	OracleAPIKey            string `env:"ORACLE_API_KEY"`
	OracleModel             string `env:"ORACLE_MODEL" envDefault:"gpt-4o-mini"`
	CompletedRetentionHours int    `env:"COMPLETED_RETENTION_HOURS" envDefault:"24"`
	LogLevel                string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) CompletedRetention() time.Duration {
	return time.Duration(c.CompletedRetentionHours) * time.Hour
}

// ArchiveEnabled reports whether completed games are archived to
// Postgres. The game itself runs on Redis alone.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) Validate(isProduction bool) error {
	if c.WordListURL != "" && !strings.HasPrefix(c.WordListURL, "http") {
		return fmt.Errorf("WORD_LIST_URL must be an http(s) URL")
	}

	if isProduction {
		if c.OracleAPIKey == "" {
			log.Warn().Msg("ORACLE_API_KEY is empty in production: every question will be answered with \"unknown\"")
		}
		if c.WordListURL == "" {
			log.Warn().Msg("WORD_LIST_URL is empty in production: words come from the embedded fallback pool")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
