package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	pkgkafka "github.com/utafrali/StorefrontFilterGo/pkg/kafka"
)

// Kafka topic constants for filter-config domain events. The product sync
// jobs and admin dashboard subscribe to these to react to merchant changes.
const (
	TopicConfigCreated   = "storefront.filterconfig.created"
	TopicConfigUpdated   = "storefront.filterconfig.updated"
	TopicConfigDeleted   = "storefront.filterconfig.deleted"
	TopicConfigActivated = "storefront.filterconfig.activated"
)

// Aggregate type constant.
const AggregateTypeFilterConfig = "filter_config"

// Source identifier for events originating from the filter service.
const SourceFilterService = "filter-service"

// ConfigEventData is the payload for filterconfig.created, updated, and
// activated events. It carries the full config snapshot.
type ConfigEventData struct {
	ID      string                      `json:"id"`
	Shop    string                      `json:"shop"`
	Name    string                      `json:"name"`
	Active  bool                        `json:"active"`
	Version int                         `json:"version"`
	Options []domain.FilterOptionConfig `json:"options"`
}

// ConfigDeletedData is the payload for a filterconfig.deleted event.
type ConfigDeletedData struct {
	ID   string `json:"id"`
	Shop string `json:"shop"`
}

// Producer publishes filter-config domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the filter service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func configData(cfg *domain.FilterConfig) ConfigEventData {
	return ConfigEventData{
		ID:      cfg.ID,
		Shop:    cfg.Shop,
		Name:    cfg.Name,
		Active:  cfg.Active,
		Version: cfg.Version,
		Options: cfg.Options,
	}
}

func (p *Producer) publishConfig(ctx context.Context, topic string, cfg *domain.FilterConfig) error {
	event, err := pkgkafka.NewEvent(topic, cfg.ID, AggregateTypeFilterConfig, SourceFilterService, configData(cfg))
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published filter config event",
		slog.String("topic", topic),
		slog.String("config_id", cfg.ID),
		slog.String("shop", cfg.Shop),
	)

	return nil
}

// PublishConfigCreated publishes a filterconfig.created event.
func (p *Producer) PublishConfigCreated(ctx context.Context, cfg *domain.FilterConfig) error {
	return p.publishConfig(ctx, TopicConfigCreated, cfg)
}

// PublishConfigUpdated publishes a filterconfig.updated event.
func (p *Producer) PublishConfigUpdated(ctx context.Context, cfg *domain.FilterConfig) error {
	return p.publishConfig(ctx, TopicConfigUpdated, cfg)
}

// PublishConfigActivated publishes a filterconfig.activated event.
func (p *Producer) PublishConfigActivated(ctx context.Context, cfg *domain.FilterConfig) error {
	return p.publishConfig(ctx, TopicConfigActivated, cfg)
}

// PublishConfigDeleted publishes a filterconfig.deleted event.
func (p *Producer) PublishConfigDeleted(ctx context.Context, shop, id string) error {
	event, err := pkgkafka.NewEvent(TopicConfigDeleted, id, AggregateTypeFilterConfig, SourceFilterService, ConfigDeletedData{ID: id, Shop: shop})
	if err != nil {
		return fmt.Errorf("create filterconfig.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicConfigDeleted, event); err != nil {
		return fmt.Errorf("publish filterconfig.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published filter config event",
		slog.String("topic", TopicConfigDeleted),
		slog.String("config_id", id),
		slog.String("shop", shop),
	)

	return nil
}
