package testsupport

import (
	"path/filepath"
	"testing"

	"reelist/internal/config"
)

// TestAPIKey is the credential NewConfig installs and NewCatalogServer expects.
const TestAPIKey = "test-key"

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = TestAPIKey
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.UserData.Backend = config.BackendFile
	cfgVal.UserData.Path = filepath.Join(base, "data", "userdata")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithCatalogServer points the TMDB base URL at a fake catalog server.
func WithCatalogServer(server *CatalogServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = server.URL
	}
}

// WithSQLiteBackend switches user data persistence to a temp SQLite database.
func WithSQLiteBackend() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.UserData.Backend = config.BackendSQLite
		b.cfg.UserData.Path = filepath.Join(b.baseDir, "data", "userdata.db")
	}
}

// WithCacheTTL sets the response cache freshness window in seconds.
func WithCacheTTL(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.CacheTTLSeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
