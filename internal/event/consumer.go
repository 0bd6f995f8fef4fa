package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/StorefrontFilterGo/internal/service"
	pkgkafka "github.com/utafrali/StorefrontFilterGo/pkg/kafka"
)

// Kafka topic constants for product domain events consumed by the filter service.
const (
	TopicProductCreated = "storefront.product.created"
	TopicProductUpdated = "storefront.product.updated"
	TopicProductDeleted = "storefront.product.deleted"
)

// ProductEventData represents the payload from product domain events.
type ProductEventData struct {
	ID          string              `json:"id"`
	Shop        string              `json:"shop"`
	Title       string              `json:"title"`
	Handle      string              `json:"handle"`
	Description string              `json:"description"`
	Vendor      string              `json:"vendor"`
	ProductType string              `json:"product_type"`
	Tags        []string            `json:"tags"`
	Collections []string            `json:"collections"`
	Options     map[string][]string `json:"options"`
	MinPrice    float64             `json:"min_price"`
	MaxPrice    float64             `json:"max_price"`
	Currency    string              `json:"currency"`
	Status      string              `json:"status"`
	ImageURL    string              `json:"image_url"`
}

// ProductDeletedData represents the payload from a product.deleted event.
type ProductDeletedData struct {
	ID   string `json:"id"`
	Shop string `json:"shop"`
}

// Consumer handles Kafka events that keep the product index in sync.
type Consumer struct {
	searchService *service.SearchService
	logger        *slog.Logger
}

// NewConsumer creates a new event consumer for the filter service.
func NewConsumer(searchService *service.SearchService, logger *slog.Logger) *Consumer {
	return &Consumer{
		searchService: searchService,
		logger:        logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleProductUpsert(ctx, event)
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

// handleProductUpsert indexes a created or updated product. Both events carry
// the full product snapshot, so they share one path.
func (c *Consumer) handleProductUpsert(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	input := &service.IndexProductInput{
		ID:          data.ID,
		Shop:        data.Shop,
		Title:       data.Title,
		Handle:      data.Handle,
		Description: data.Description,
		Vendor:      data.Vendor,
		ProductType: data.ProductType,
		Tags:        data.Tags,
		Collections: data.Collections,
		Options:     data.Options,
		MinPrice:    data.MinPrice,
		MaxPrice:    data.MaxPrice,
		Currency:    data.Currency,
		Status:      data.Status,
		ImageURL:    data.ImageURL,
	}

	if err := c.searchService.IndexProduct(ctx, input); err != nil {
		return fmt.Errorf("index product from %s event: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "indexed product from event",
		slog.String("event_type", event.EventType),
		slog.String("shop", data.Shop),
		slog.String("product_id", data.ID),
	)

	return nil
}

// handleProductDeleted removes a deleted product from the index.
func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := c.searchService.DeleteProduct(ctx, data.Shop, data.ID); err != nil {
		return fmt.Errorf("delete product from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "deleted product from deleted event",
		slog.String("shop", data.Shop),
		slog.String("product_id", data.ID),
	)

	return nil
}
