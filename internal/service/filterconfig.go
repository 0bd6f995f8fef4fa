package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	"github.com/utafrali/StorefrontFilterGo/internal/repository"
	apperrors "github.com/utafrali/StorefrontFilterGo/pkg/errors"
)

const activeConfigCacheTTL = 5 * time.Minute

// ConfigEventPublisher publishes filter-config lifecycle events so other
// services can react to merchant changes.
type ConfigEventPublisher interface {
	PublishConfigCreated(ctx context.Context, cfg *domain.FilterConfig) error
	PublishConfigUpdated(ctx context.Context, cfg *domain.FilterConfig) error
	PublishConfigActivated(ctx context.Context, cfg *domain.FilterConfig) error
	PublishConfigDeleted(ctx context.Context, shop, id string) error
}

// FilterConfigService implements the business logic for merchant filter
// configurations: CRUD, the one-active-per-shop activation flow, and the
// cached active-config lookup used on the hot storefront path.
type FilterConfigService struct {
	repo   repository.FilterConfigRepository
	cache  *redis.Client
	events ConfigEventPublisher
	logger *slog.Logger
}

// NewFilterConfigService creates a new filter-config service. A nil cache
// disables caching; a nil events publisher disables event publishing.
func NewFilterConfigService(repo repository.FilterConfigRepository, cache *redis.Client, events ConfigEventPublisher, logger *slog.Logger) *FilterConfigService {
	return &FilterConfigService{
		repo:   repo,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// CreateFilterConfigInput holds the parameters for creating a filter config.
type CreateFilterConfigInput struct {
	Shop    string
	Name    string
	Options []domain.FilterOptionConfig
}

// UpdateFilterConfigInput holds the parameters for updating a filter config.
type UpdateFilterConfigInput struct {
	Name    string
	Options []domain.FilterOptionConfig
}

// Create inserts a new, inactive filter config for a shop.
func (s *FilterConfigService) Create(ctx context.Context, input *CreateFilterConfigInput) (*domain.FilterConfig, error) {
	if input.Shop == "" {
		return nil, apperrors.InvalidInput("shop is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := time.Now().UTC()
	cfg := &domain.FilterConfig{
		ID:        uuid.New().String(),
		Shop:      input.Shop,
		Name:      input.Name,
		Active:    false,
		Version:   1,
		Options:   input.Options,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cfg.Options == nil {
		cfg.Options = []domain.FilterOptionConfig{}
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, fmt.Errorf("create filter config: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishConfigCreated(ctx, cfg); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish filterconfig.created event",
				slog.String("config_id", cfg.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "filter config created",
		slog.String("config_id", cfg.ID),
		slog.String("shop", cfg.Shop),
	)

	return cfg, nil
}

// Get retrieves a filter config by its ID.
func (s *FilterConfigService) Get(ctx context.Context, id string) (*domain.FilterConfig, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get filter config: %w", err)
	}
	return cfg, nil
}

// List returns a shop's filter configs with the total count.
func (s *FilterConfigService) List(ctx context.Context, shop string, page, perPage int) ([]domain.FilterConfig, int, error) {
	configs, total, err := s.repo.List(ctx, repository.FilterConfigFilter{
		Shop:    shop,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list filter configs: %w", err)
	}
	return configs, total, nil
}

// Update modifies a filter config's name and options, bumping its version.
func (s *FilterConfigService) Update(ctx context.Context, id string, input *UpdateFilterConfigInput) (*domain.FilterConfig, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update filter config: %w", err)
	}

	if input.Name != "" {
		cfg.Name = input.Name
	}
	if input.Options != nil {
		cfg.Options = input.Options
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("update filter config: %w", err)
	}

	s.invalidateActive(ctx, cfg.Shop)

	if s.events != nil {
		if err := s.events.PublishConfigUpdated(ctx, cfg); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish filterconfig.updated event",
				slog.String("config_id", cfg.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "filter config updated",
		slog.String("config_id", cfg.ID),
		slog.String("shop", cfg.Shop),
		slog.Int("version", cfg.Version),
	)

	return cfg, nil
}

// Delete removes a filter config.
func (s *FilterConfigService) Delete(ctx context.Context, id string) error {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete filter config: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete filter config: %w", err)
	}

	s.invalidateActive(ctx, cfg.Shop)

	if s.events != nil {
		if err := s.events.PublishConfigDeleted(ctx, cfg.Shop, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish filterconfig.deleted event",
				slog.String("config_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "filter config deleted",
		slog.String("config_id", id),
		slog.String("shop", cfg.Shop),
	)

	return nil
}

// Activate marks a config as its shop's active one, deactivating any sibling.
func (s *FilterConfigService) Activate(ctx context.Context, id string) (*domain.FilterConfig, error) {
	if err := s.repo.Activate(ctx, id); err != nil {
		return nil, fmt.Errorf("activate filter config: %w", err)
	}

	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("activate filter config: %w", err)
	}

	s.invalidateActive(ctx, cfg.Shop)

	if s.events != nil {
		if err := s.events.PublishConfigActivated(ctx, cfg); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish filterconfig.activated event",
				slog.String("config_id", cfg.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "filter config activated",
		slog.String("config_id", cfg.ID),
		slog.String("shop", cfg.Shop),
	)

	return cfg, nil
}

// ActiveForShop returns the shop's active filter config, or nil when the shop
// has none. The result is cached; storefront traffic hits this on every
// filter request.
func (s *FilterConfigService) ActiveForShop(ctx context.Context, shop string) (*domain.FilterConfig, error) {
	key := activeConfigKey(shop)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cfg domain.FilterConfig
			if err := json.Unmarshal(data, &cfg); err == nil {
				return &cfg, nil
			}
			// Corrupt entry, fall through to the repository.
			s.cache.Del(ctx, key)
		}
	}

	cfg, err := s.repo.GetActiveByShop(ctx, shop)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active filter config: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(cfg); err == nil {
			if err := s.cache.Set(ctx, key, data, activeConfigCacheTTL).Err(); err != nil {
				s.logger.WarnContext(ctx, "failed to cache active filter config",
					slog.String("shop", shop),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return cfg, nil
}

// FormatStorefrontConfig projects a filter config into the slim shape the
// theme widget consumes: published options only, position-ordered.
func FormatStorefrontConfig(cfg *domain.FilterConfig) *domain.StorefrontFilterConfig {
	if cfg == nil {
		return nil
	}

	options := make([]domain.StorefrontFilterOption, 0, len(cfg.Options))
	for _, opt := range cfg.Options {
		if opt.Status != domain.OptionStatusPublished {
			continue
		}
		options = append(options, domain.StorefrontFilterOption{
			Label:      opt.Label,
			OptionType: opt.OptionType,
			ShowCount:  opt.CountsVisible(),
			Position:   opt.EffectivePosition(),
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Position < options[j].Position
	})

	return &domain.StorefrontFilterConfig{
		ID:      cfg.ID,
		Shop:    cfg.Shop,
		Version: cfg.Version,
		Options: options,
	}
}

func (s *FilterConfigService) invalidateActive(ctx context.Context, shop string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, activeConfigKey(shop)).Err(); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate active filter config cache",
			slog.String("shop", shop),
			slog.String("error", err.Error()),
		)
	}
}

func activeConfigKey(shop string) string {
	return "filter_config:active:" + shop
}
