package repository

import (
	"context"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// FilterConfigFilter defines filter criteria for listing filter configs.
type FilterConfigFilter struct {
	Shop    string
	Page    int
	PerPage int
}

// FilterConfigRepository defines the interface for filter-config persistence
// operations.
type FilterConfigRepository interface {
	// Create inserts a new filter config into the store.
	Create(ctx context.Context, cfg *domain.FilterConfig) error

	// GetByID retrieves a filter config by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.FilterConfig, error)

	// GetActiveByShop retrieves the single active filter config of a shop.
	GetActiveByShop(ctx context.Context, shop string) (*domain.FilterConfig, error)

	// List returns filter configs matching the given filter along with the
	// total count.
	List(ctx context.Context, filter FilterConfigFilter) ([]domain.FilterConfig, int, error)

	// Update modifies an existing filter config and bumps its version.
	Update(ctx context.Context, cfg *domain.FilterConfig) error

	// Delete removes a filter config by its ID.
	Delete(ctx context.Context, id string) error

	// Activate marks a config active and deactivates its shop's other
	// configs in the same transaction, keeping at most one active per shop.
	Activate(ctx context.Context, id string) error
}
