package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
	"github.com/kryptonum-dev/audiofast-filters/pkg/slug"
)

// ErrReindexInProgress is returned when a reindex is requested while another
// one is still running.
var ErrReindexInProgress = errors.New("reindex already in progress")

// reindexGuard serializes full catalog rebuilds.
type reindexGuard struct {
	mu      sync.Mutex
	running bool
}

func (g *reindexGuard) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return false
	}
	g.running = true
	return true
}

func (g *reindexGuard) end() {
	g.mu.Lock()
	g.running = false
	g.mu.Unlock()
}

// ReindexRunning reports whether a full rebuild is currently in flight.
func (g *reindexGuard) ReindexRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// UpsertProductInput holds the parameters for adding or updating a product's
// filter record.
type UpsertProductInput struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Slug           string                  `json:"slug"`
	CategoryPath   string                  `json:"category_path"`
	CategoryPaths  []string                `json:"category_paths"`
	BrandSlug      string                  `json:"brand_slug"`
	BasePriceCents *int64                  `json:"base_price_cents"`
	CertifiedUsed  bool                    `json:"certified_used"`
	Attributes     []domain.AttributeValue `json:"attributes"`
}

func (in *UpsertProductInput) toDomain() domain.ProductFilterMetadata {
	productSlug := in.Slug
	if productSlug == "" {
		productSlug = slug.Generate(in.Name)
	}

	return domain.ProductFilterMetadata{
		ID:             in.ID,
		Name:           in.Name,
		Slug:           productSlug,
		CategoryPath:   in.CategoryPath,
		CategoryPaths:  in.CategoryPaths,
		BrandSlug:      in.BrandSlug,
		BasePriceCents: in.BasePriceCents,
		CertifiedUsed:  in.CertifiedUsed,
		Attributes:     in.Attributes,
	}
}

// UpsertProduct adds or replaces a single product's filter record.
func (s *FilterService) UpsertProduct(ctx context.Context, input *UpsertProductInput) error {
	if input.ID == "" {
		return fmt.Errorf("upsert product: id is required")
	}
	if input.Name == "" {
		return fmt.Errorf("upsert product: name is required")
	}

	product := input.toDomain()
	if err := s.store.Upsert(ctx, &product); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	s.logger.InfoContext(ctx, "product upserted",
		slog.String("product_id", input.ID),
		slog.String("name", input.Name),
	)

	return nil
}

// DeleteProduct removes a product's filter record. Unknown IDs are a no-op.
func (s *FilterService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete product: id is required")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted from catalog",
		slog.String("product_id", id),
	)

	return nil
}

// BulkUpsert adds or replaces a batch of product filter records. Records
// without an ID are skipped.
func (s *FilterService) BulkUpsert(ctx context.Context, inputs []UpsertProductInput) error {
	products := make([]domain.ProductFilterMetadata, 0, len(inputs))
	for i := range inputs {
		if inputs[i].ID == "" {
			continue
		}
		products = append(products, inputs[i].toDomain())
	}

	if err := s.store.BulkUpsert(ctx, products); err != nil {
		return fmt.Errorf("bulk upsert: %w", err)
	}

	s.logger.InfoContext(ctx, "bulk upsert completed",
		slog.Int("count", len(products)),
	)

	return nil
}

// Reindex rebuilds the entire catalog from the CMS and swaps it in
// atomically. Only one reindex runs at a time.
func (s *FilterService) Reindex(ctx context.Context) error {
	if !s.begin() {
		return ErrReindexInProgress
	}
	defer s.end()

	products, err := s.cms.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	if err := s.store.Replace(ctx, products); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	s.logger.InfoContext(ctx, "reindex completed",
		slog.Int("count", len(products)),
	)

	return nil
}
