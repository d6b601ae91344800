package store

import (
	"testing"

	"github.com/Borbofruto/Ruki/internal/catalog"
)

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() failed: %v", err)
	}
	return cat
}
