package cmd

import (
	"context"
	"fmt"

	"github.com/arcanaland/flashcards/internal/config"
	"github.com/arcanaland/flashcards/internal/deck"
	"github.com/arcanaland/flashcards/internal/favorites"
	"github.com/arcanaland/flashcards/internal/kv"
)

// newSource builds the resource source from the loaded config
func newSource() (deck.Source, error) {
	if cfg.Resources == "" {
		return nil, fmt.Errorf("no resources configured, run 'flashcards sets init' or pass --resources")
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return deck.NewSource(cfg.Resources, timeout), nil
}

// loadCatalog returns the catalog and any load error. The catalog is usable either way.
func loadCatalog(ctx context.Context) (*deck.Catalog, error) {
	src, err := newSource()
	if err != nil {
		return deck.NewCatalog(nil, nil, logger), err
	}
	return deck.LoadCatalog(ctx, src, cfg.Catalog, logger)
}

// openFavorites opens the configured storage backend. The caller closes the returned store.
func openFavorites() (*favorites.Store, kv.Store, error) {
	location := config.GetStorageDir()
	if cfg.Storage == kv.BackendSQLite {
		location = config.GetDatabasePath()
	}

	store, err := kv.Open(cfg.Storage, location)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening %s storage: %w", cfg.Storage, err)
	}
	return favorites.Open(store, logger), store, nil
}
