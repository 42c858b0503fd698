package testsupport

import (
	"testing"

	"vidsift/internal/config"
	"vidsift/internal/probecache"
)

// MustOpenStore opens a probecache.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *probecache.Store {
	t.Helper()

	store, err := probecache.Open(cfg)
	if err != nil {
		t.Fatalf("probecache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
