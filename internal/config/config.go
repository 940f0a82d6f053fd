package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"reelist/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

const userDataPathPlaceholder = `# path = "~/.local/share/reelist/userdata"`

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey                string `toml:"api_key"`
	BaseURL               string `toml:"base_url"`
	ImageBaseURL          string `toml:"image_base_url"`
	Language              string `toml:"language"`
	CacheTTLSeconds       int    `toml:"cache_ttl_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // 0 keeps the transport default
}

// UserData contains configuration for watchlist and rating persistence.
type UserData struct {
	Backend string `toml:"backend"` // "file" or "sqlite"
	Path    string `toml:"path"`    // directory for file, database path for sqlite
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Telemetry contains configuration for OpenTelemetry trace export.
type Telemetry struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// Config encapsulates all configuration values for reelist.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - TMDB: catalog credentials, endpoints, and response cache freshness
//   - UserData: watchlist/rating persistence backend
//   - Logging: log format and level
//   - Telemetry: optional OTLP trace export
type Config struct {
	Paths     Paths     `toml:"paths"`
	TMDB      TMDB      `toml:"tmdb"`
	UserData  UserData  `toml:"user_data"`
	Logging   Logging   `toml:"logging"`
	Telemetry Telemetry `toml:"telemetry"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, fmt.Errorf("%w: %w", services.ErrConfiguration, err)
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelist.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CacheTTL returns the response cache freshness window.
func (c *Config) CacheTTL() time.Duration {
	if c.TMDB.CacheTTLSeconds <= 0 {
		return time.Duration(defaultCacheTTLSeconds) * time.Second
	}
	return time.Duration(c.TMDB.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the catalog HTTP timeout; zero means no override.
func (c *Config) RequestTimeout() time.Duration {
	if c.TMDB.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TMDB.RequestTimeoutSeconds) * time.Second
}

// LogFilePath returns the log file location inside the log directory.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "reelist.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleOptions seeds the user data section of a generated sample.
type SampleOptions struct {
	DataDir string // blank keeps the default data directory
	Backend string // BackendFile or BackendSQLite; blank keeps BackendFile
}

// RenderSample returns the sample configuration with the data directory,
// log directory, and user data backend and path filled in from opts.
func RenderSample(opts SampleOptions) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = defaultUserDataBackend
	}
	var userDataPath string
	switch backend {
	case BackendFile:
		userDataPath = defaultUserDataFileDir
	case BackendSQLite:
		userDataPath = defaultUserDataSQLiteFile
	default:
		return "", fmt.Errorf("user_data.backend must be %q or %q, got %q", BackendFile, BackendSQLite, opts.Backend)
	}
	dataDir := strings.TrimSpace(opts.DataDir)
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	seeded := strings.NewReplacer(
		fmt.Sprintf("data_dir = %q", defaultDataDir), fmt.Sprintf("data_dir = %q", dataDir),
		fmt.Sprintf("log_dir = %q", defaultLogDir), fmt.Sprintf("log_dir = %q", filepath.Join(dataDir, "logs")),
		fmt.Sprintf("backend = %q", defaultUserDataBackend), fmt.Sprintf("backend = %q", backend),
		userDataPathPlaceholder, fmt.Sprintf("path = %q", filepath.Join(dataDir, userDataPath)),
	).Replace(sampleConfig)
	return seeded, nil
}

// CreateSample writes a seeded sample configuration file to path.
func CreateSample(path string, opts SampleOptions) error {
	contents, err := RenderSample(opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
