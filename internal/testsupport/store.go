package testsupport

import (
	"context"
	"testing"

	"reelist/internal/config"
	"reelist/internal/logging"
	"reelist/internal/userdata"
)

// MustOpenStore opens the configured user data store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...userdata.Option) *userdata.Store {
	t.Helper()

	backend, err := userdata.OpenBackend(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("userdata.OpenBackend: %v", err)
	}
	store, err := userdata.Open(context.Background(), backend, opts...)
	if err != nil {
		_ = backend.Close()
		t.Fatalf("userdata.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
