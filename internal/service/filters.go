// Package service implements the business logic of the filter computation
// service: computing the full filter state for a selection, listing matching
// products, and keeping the catalog in sync with the CMS.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kryptonum-dev/audiofast-filters/internal/catalog"
	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
	"github.com/kryptonum-dev/audiofast-filters/internal/engine"
	"github.com/kryptonum-dev/audiofast-filters/pkg/pagination"
)

// MetadataFetcher retrieves the full set of product filter records from the
// upstream CMS.
type MetadataFetcher interface {
	FetchAll(ctx context.Context) ([]domain.ProductFilterMetadata, error)
}

// FilterService implements the business logic for filter computation and
// catalog maintenance.
type FilterService struct {
	store  catalog.Store
	cms    MetadataFetcher
	logger *slog.Logger

	reindexGuard
}

// NewFilterService creates a new filter service.
func NewFilterService(store catalog.Store, cms MetadataFetcher, logger *slog.Logger) *FilterService {
	return &FilterService{
		store:  store,
		cms:    cms,
		logger: logger,
	}
}

// ComputeFilters derives the complete filter state for the given active
// selection over the current catalog.
func (s *FilterService) ComputeFilters(ctx context.Context, active domain.ActiveFilters) (*domain.ComputedFilters, error) {
	products, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute filters: %w", err)
	}

	result := engine.Compute(products, active)

	s.logger.DebugContext(ctx, "filters computed",
		slog.Int("catalog_size", len(products)),
		slog.Int("total", result.TotalCount),
	)

	return result, nil
}

// ListProducts returns the page of products matching the active selection,
// in the requested order.
func (s *FilterService) ListProducts(ctx context.Context, active domain.ActiveFilters, sortBy domain.SortOrder, params pagination.Params) (*pagination.Result[domain.ProductFilterMetadata], error) {
	if sortBy == "" {
		sortBy = domain.SortNameAsc
	}
	if !sortBy.Valid() {
		return nil, fmt.Errorf("list products: unsupported sort order %q", sortBy)
	}

	products, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	matched := engine.Filter(products, engine.From(active))
	sortProducts(matched, sortBy)

	page := pagination.Slice(matched, params)
	result := pagination.NewResult(page, len(matched), params)
	return &result, nil
}

// sortProducts orders the slice in place. Products without a defined price
// sort after every priced product regardless of direction.
func sortProducts(products []domain.ProductFilterMetadata, sortBy domain.SortOrder) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := &products[i], &products[j]
		switch sortBy {
		case domain.SortPriceAsc, domain.SortPriceDesc:
			if a.BasePriceCents == nil {
				return false
			}
			if b.BasePriceCents == nil {
				return true
			}
			if *a.BasePriceCents != *b.BasePriceCents {
				if sortBy == domain.SortPriceAsc {
					return *a.BasePriceCents < *b.BasePriceCents
				}
				return *a.BasePriceCents > *b.BasePriceCents
			}
			return a.Name < b.Name
		case domain.SortNameDesc:
			return strings.ToLower(a.Name) > strings.ToLower(b.Name)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}
