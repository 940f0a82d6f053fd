package config

import (
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/text/language"

	"reelist/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateUserData(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateTelemetry()
}

func (c *Config) validateTMDB() error {
	if err := validateHTTPURL("tmdb.base_url", c.TMDB.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("tmdb.image_base_url", c.TMDB.ImageBaseURL); err != nil {
		return err
	}
	if _, err := language.Parse(c.TMDB.Language); err != nil {
		return fmt.Errorf("tmdb.language %q is not a valid language tag: %w", c.TMDB.Language, err)
	}
	if c.TMDB.CacheTTLSeconds < 0 {
		return errors.New("tmdb.cache_ttl_seconds must not be negative (0 uses the default)")
	}
	if c.TMDB.RequestTimeoutSeconds < 0 {
		return errors.New("tmdb.request_timeout_seconds must be zero or positive")
	}
	return nil
}

// RequireTMDBKey reports a configuration error when no catalog credential is set.
// Commands that only touch local user data run without one.
func (c *Config) RequireTMDBKey() error {
	if c.TMDB.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("%w: tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'reelist config init')",
		services.ErrConfiguration, defaultPath)
}

func (c *Config) validateUserData() error {
	switch c.UserData.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("user_data.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.UserData.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func (c *Config) validateTelemetry() error {
	if c.Telemetry.OTLPEndpoint == "" {
		return nil
	}
	return validateHTTPURL("telemetry.otlp_endpoint", c.Telemetry.OTLPEndpoint)
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, value)
	}
	return nil
}
