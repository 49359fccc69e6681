// Package event consumes product change events from the CMS publishing
// pipeline and keeps the in-memory catalog current between full reindexes.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
	"github.com/kryptonum-dev/audiofast-filters/internal/service"
	pkgkafka "github.com/kryptonum-dev/audiofast-filters/pkg/kafka"
)

// Kafka topic constants for product domain events consumed by the filter service.
const (
	TopicProductCreated = "audiofast.product.created"
	TopicProductUpdated = "audiofast.product.updated"
	TopicProductDeleted = "audiofast.product.deleted"
)

// ProductEventData represents the payload from product created and updated
// events.
type ProductEventData struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Slug           string                  `json:"slug"`
	CategoryPath   string                  `json:"category_path"`
	CategoryPaths  []string                `json:"category_paths,omitempty"`
	BrandSlug      string                  `json:"brand_slug"`
	BasePriceCents *int64                  `json:"base_price_cents,omitempty"`
	CertifiedUsed  bool                    `json:"certified_used"`
	Attributes     []domain.AttributeValue `json:"attributes,omitempty"`
}

// ProductDeletedData represents the payload from a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// Consumer handles Kafka events related to product changes in the catalog.
type Consumer struct {
	filterService *service.FilterService
	logger        *slog.Logger
}

// NewConsumer creates a new event consumer for the filter service.
func NewConsumer(filterService *service.FilterService, logger *slog.Logger) *Consumer {
	return &Consumer{
		filterService: filterService,
		logger:        logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleProductUpserted(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleProductUpserted refreshes the catalog record for a created or
// updated product.
func (c *Consumer) handleProductUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	input := &service.UpsertProductInput{
		ID:             data.ID,
		Name:           data.Name,
		Slug:           data.Slug,
		CategoryPath:   data.CategoryPath,
		CategoryPaths:  data.CategoryPaths,
		BrandSlug:      data.BrandSlug,
		BasePriceCents: data.BasePriceCents,
		CertifiedUsed:  data.CertifiedUsed,
		Attributes:     data.Attributes,
	}

	if err := c.filterService.UpsertProduct(ctx, input); err != nil {
		return fmt.Errorf("upsert product from %s event: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "catalog updated from product event",
		slog.String("event_type", event.EventType),
		slog.String("product_id", data.ID),
	)

	return nil
}

// handleProductDeleted removes a deleted product from the catalog.
func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := c.filterService.DeleteProduct(ctx, data.ID); err != nil {
		return fmt.Errorf("delete product from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "product removed from catalog",
		slog.String("product_id", data.ID),
	)

	return nil
}
