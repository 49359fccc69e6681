// Package catalog keeps the product filter metadata that the computation
// engine works over. The catalog is held entirely in memory and is rebuilt
// from the CMS on startup and on demand.
package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
)

// Store is the catalog abstraction consumed by the service layer.
type Store interface {
	// Upsert adds or replaces a single product by ID.
	Upsert(ctx context.Context, product *domain.ProductFilterMetadata) error
	// Delete removes a product by ID. Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, id string) error
	// BulkUpsert adds or replaces a batch of products.
	BulkUpsert(ctx context.Context, products []domain.ProductFilterMetadata) error
	// Replace swaps the entire catalog atomically.
	Replace(ctx context.Context, products []domain.ProductFilterMetadata) error
	// Snapshot returns a stable copy of the catalog ordered by product ID.
	Snapshot(ctx context.Context) ([]domain.ProductFilterMetadata, error)
	// Len reports the number of stored products.
	Len(ctx context.Context) (int, error)
}

// MemoryStore is an in-memory Store implementation.
// Thread-safe via sync.RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]domain.ProductFilterMetadata
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]domain.ProductFilterMetadata),
	}
}

func (s *MemoryStore) Upsert(_ context.Context, product *domain.ProductFilterMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = *product
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

func (s *MemoryStore) BulkUpsert(_ context.Context, products []domain.ProductFilterMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range products {
		s.products[products[i].ID] = products[i]
	}
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, products []domain.ProductFilterMetadata) error {
	next := make(map[string]domain.ProductFilterMetadata, len(products))
	for i := range products {
		next[products[i].ID] = products[i]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = next
	return nil
}

// Snapshot copies the catalog out under a read lock. The ID ordering keeps
// computation results deterministic across calls.
func (s *MemoryStore) Snapshot(_ context.Context) ([]domain.ProductFilterMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ProductFilterMetadata, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.products), nil
}
