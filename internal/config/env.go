package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables layered over the TOML file.
// TMDB_API_KEY only fills an empty api_key; the rest replace file values.
type envOverrides struct {
	TMDBAPIKey      string `env:"TMDB_API_KEY"`
	TMDBBaseURL     string `env:"REELIST_TMDB_BASE_URL"`
	TMDBLanguage    string `env:"REELIST_TMDB_LANGUAGE"`
	UserDataBackend string `env:"REELIST_USER_DATA_BACKEND"`
	UserDataPath    string `env:"REELIST_USER_DATA_PATH"`
	DataDir         string `env:"REELIST_DATA_DIR"`
	LogLevel        string `env:"REELIST_LOG_LEVEL"`
	LogFormat       string `env:"REELIST_LOG_FORMAT"`
	OTLPEndpoint    string `env:"REELIST_OTLP_ENDPOINT"`
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		c.TMDB.APIKey = overrides.TMDBAPIKey
	}
	setIfPresent(&c.TMDB.BaseURL, overrides.TMDBBaseURL)
	setIfPresent(&c.TMDB.Language, overrides.TMDBLanguage)
	setIfPresent(&c.UserData.Backend, overrides.UserDataBackend)
	setIfPresent(&c.UserData.Path, overrides.UserDataPath)
	setIfPresent(&c.Paths.DataDir, overrides.DataDir)
	setIfPresent(&c.Logging.Level, overrides.LogLevel)
	setIfPresent(&c.Logging.Format, overrides.LogFormat)
	setIfPresent(&c.Telemetry.OTLPEndpoint, overrides.OTLPEndpoint)
	return nil
}

func setIfPresent(target *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*target = value
	}
}
