package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"reelist/internal/config"
	"reelist/internal/services"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TMDB_API_KEY",
		"REELIST_TMDB_BASE_URL",
		"REELIST_TMDB_LANGUAGE",
		"REELIST_USER_DATA_BACKEND",
		"REELIST_USER_DATA_PATH",
		"REELIST_DATA_DIR",
		"REELIST_LOG_LEVEL",
		"REELIST_LOG_FORMAT",
		"REELIST_OTLP_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMDB_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "reelist")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.CacheTTL() != 10*time.Minute {
		t.Fatalf("expected ten minute cache ttl, got %s", cfg.CacheTTL())
	}
	if cfg.RequestTimeout() != 0 {
		t.Fatalf("expected no request timeout override, got %s", cfg.RequestTimeout())
	}
	if cfg.UserData.Backend != config.BackendFile {
		t.Fatalf("expected file backend by default, got %q", cfg.UserData.Backend)
	}
	if cfg.UserData.Path != filepath.Join(wantData, "userdata") {
		t.Fatalf("unexpected user data path: %q", cfg.UserData.Path)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reelist.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		TMDB struct {
			APIKey          string `toml:"api_key"`
			BaseURL         string `toml:"base_url"`
			CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
		} `toml:"tmdb"`
		UserData struct {
			Backend string `toml:"backend"`
		} `toml:"user_data"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb/"
	custom.TMDB.CacheTTLSeconds = 30
	custom.UserData.Backend = "SQLite"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("expected TMDB key from file, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected trailing slash trimmed from base url, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.CacheTTL() != 30*time.Second {
		t.Fatalf("expected 30s cache ttl, got %s", cfg.CacheTTL())
	}
	if cfg.UserData.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.UserData.Backend)
	}
	if cfg.UserData.Path != filepath.Join(tempDir, "data", "userdata.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.UserData.Path)
	}
}

func TestConfigFileAPIKeyWinsOverEnv(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "reelist.toml")
	if err := os.WriteFile(configPath, []byte("[tmdb]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TMDB_API_KEY", "env-key")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "file-key" {
		t.Fatalf("expected file key to win, got %q", cfg.TMDB.APIKey)
	}
}

func TestEnvOverridesReplaceFileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "reelist.toml")
	contents := "[tmdb]\napi_key = \"k\"\nlanguage = \"en-US\"\n[logging]\nlevel = \"info\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REELIST_TMDB_LANGUAGE", "fr-FR")
	t.Setenv("REELIST_LOG_LEVEL", "DEBUG")
	t.Setenv("REELIST_USER_DATA_BACKEND", "sqlite")
	t.Setenv("REELIST_USER_DATA_PATH", filepath.Join(dir, "custom.db"))

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.Language != "fr-FR" {
		t.Errorf("expected language from env, got %q", cfg.TMDB.Language)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected normalized debug level, got %q", cfg.Logging.Level)
	}
	if cfg.UserData.Backend != config.BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.UserData.Backend)
	}
	if cfg.UserData.Path != filepath.Join(dir, "custom.db") {
		t.Errorf("expected user data path from env, got %q", cfg.UserData.Path)
	}
}

func TestLoadWithoutAPIKeyDefersToCatalog(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "missing.toml")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("expected config without api key to load, got %v", err)
	}

	err = cfg.RequireTMDBKey()
	if err == nil {
		t.Fatal("expected error when no api key is configured")
	}
	if !strings.Contains(err.Error(), "TMDB_API_KEY") {
		t.Fatalf("expected hint about TMDB_API_KEY, got %v", err)
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error marker, got %v", err)
	}

	cfg.TMDB.APIKey = "key"
	if err := cfg.RequireTMDBKey(); err != nil {
		t.Fatalf("expected key to satisfy check, got %v", err)
	}
}

func TestLoadInvalidValueIsConfigurationError(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[user_data]\nbackend = \"redis\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error marker, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path, config.SampleOptions{}); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "TMDB_API_KEY") {
		t.Fatalf("sample config missing api key hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.TMDB.CacheTTLSeconds != 600 {
		t.Fatalf("expected sample cache ttl 600, got %d", cfg.TMDB.CacheTTLSeconds)
	}
	if cfg.UserData.Backend != config.BackendFile {
		t.Fatalf("expected sample backend file, got %q", cfg.UserData.Backend)
	}
	if cfg.UserData.Path != "~/.local/share/reelist/userdata" {
		t.Fatalf("expected sample user data path seeded, got %q", cfg.UserData.Path)
	}
}

func TestCreateSampleSeedsDataDirAndBackend(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	dataDir := filepath.Join(base, "movies")
	if err := config.CreateSample(path, config.SampleOptions{DataDir: dataDir, Backend: "SQLite"}); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	t.Setenv("TMDB_API_KEY", "env-key")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load seeded sample: %v", err)
	}
	if cfg.Paths.DataDir != dataDir || cfg.Paths.LogDir != filepath.Join(dataDir, "logs") {
		t.Fatalf("unexpected paths: %+v", cfg.Paths)
	}
	if cfg.UserData.Backend != config.BackendSQLite || cfg.UserData.Path != filepath.Join(dataDir, "userdata.db") {
		t.Fatalf("unexpected user data: %+v", cfg.UserData)
	}
}

func TestCreateSampleRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path, config.SampleOptions{Backend: "redis"}); err == nil {
		t.Fatal("expected unknown backend to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file written, stat err = %v", err)
	}
}

func TestZeroCacheTTLUsesDefault(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.TMDB.CacheTTLSeconds = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero ttl should validate, got %v", err)
	}
	if cfg.CacheTTL() != 600*time.Second {
		t.Fatalf("expected default ttl, got %s", cfg.CacheTTL())
	}

	cfg.TMDB.CacheTTLSeconds = -1
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must not be negative") {
		t.Fatalf("expected negative ttl message, got %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad base url", func(c *config.Config) { c.TMDB.BaseURL = "ftp://example.com" }},
		{"base url without host", func(c *config.Config) { c.TMDB.BaseURL = "https://" }},
		{"bad language", func(c *config.Config) { c.TMDB.Language = "not a tag!" }},
		{"negative ttl", func(c *config.Config) { c.TMDB.CacheTTLSeconds = -1 }},
		{"negative timeout", func(c *config.Config) { c.TMDB.RequestTimeoutSeconds = -5 }},
		{"unknown backend", func(c *config.Config) { c.UserData.Backend = "redis" }},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "verbose" }},
		{"bad otlp endpoint", func(c *config.Config) { c.Telemetry.OTLPEndpoint = "localhost:4318" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.TMDB.APIKey = "key"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	cfg.TMDB.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults with key to validate, got %v", err)
	}
}
