package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gallery-backend/internal/models"
	"gallery-backend/internal/storage"
)

// CatalogRepository reads and writes the single catalog document kept in the
// object store. Persistence is last-writer-wins: Save overwrites the document
// unconditionally, so callers follow a load, mutate, save sequence per
// request and concurrent writers can lose updates.
type CatalogRepository struct {
	store storage.ObjectStore
	key   string
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(store storage.ObjectStore, key string) *CatalogRepository {
	return &CatalogRepository{store: store, key: key}
}

// Load fetches the catalog document. A missing document yields an empty
// catalog rather than an error, so first-run bootstrap needs no setup step.
func (r *CatalogRepository) Load(ctx context.Context) (*models.Catalog, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotExist) {
		return &models.Catalog{Events: []models.Event{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if catalog.Events == nil {
		catalog.Events = []models.Event{}
	}
	return &catalog, nil
}

// Save serializes and overwrites the catalog document
func (r *CatalogRepository) Save(ctx context.Context, catalog *models.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}

	if err := r.store.Put(ctx, r.key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}
