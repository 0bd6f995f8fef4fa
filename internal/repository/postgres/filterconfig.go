package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	"github.com/utafrali/StorefrontFilterGo/internal/repository"
	"github.com/utafrali/StorefrontFilterGo/pkg/database"
	apperrors "github.com/utafrali/StorefrontFilterGo/pkg/errors"
)

// FilterConfigRepository implements repository.FilterConfigRepository using
// PostgreSQL. Option rules are stored as a JSONB array so the merchant-facing
// shape round-trips without a relational decomposition.
type FilterConfigRepository struct {
	pool database.DBTX
}

// NewFilterConfigRepository creates a new PostgreSQL-backed filter-config repository.
func NewFilterConfigRepository(pool database.DBTX) *FilterConfigRepository {
	return &FilterConfigRepository{pool: pool}
}

// Create inserts a new filter config into the database.
func (r *FilterConfigRepository) Create(ctx context.Context, cfg *domain.FilterConfig) error {
	optionsJSON, err := json.Marshal(cfg.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	query := `
		INSERT INTO filter_configs (id, shop, name, active, version, options, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.pool.Exec(ctx, query,
		cfg.ID,
		cfg.Shop,
		cfg.Name,
		cfg.Active,
		cfg.Version,
		optionsJSON,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("filter config", "shop", cfg.Shop)
		}
		return fmt.Errorf("insert filter config: %w", err)
	}

	return nil
}

// GetByID retrieves a filter config by its ID.
func (r *FilterConfigRepository) GetByID(ctx context.Context, id string) (*domain.FilterConfig, error) {
	query := `
		SELECT id, shop, name, active, version, options, created_at, updated_at
		FROM filter_configs
		WHERE id = $1`

	return r.scanConfig(ctx, query, id)
}

// GetActiveByShop retrieves the single active filter config of a shop.
func (r *FilterConfigRepository) GetActiveByShop(ctx context.Context, shop string) (*domain.FilterConfig, error) {
	query := `
		SELECT id, shop, name, active, version, options, created_at, updated_at
		FROM filter_configs
		WHERE shop = $1 AND active`

	return r.scanConfig(ctx, query, shop)
}

// List returns filter configs matching the given filter with the total count.
func (r *FilterConfigRepository) List(ctx context.Context, filter repository.FilterConfigFilter) ([]domain.FilterConfig, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Shop != "" {
		conditions = append(conditions, fmt.Sprintf("shop = $%d", argIndex))
		args = append(args, filter.Shop)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, shop, name, active, version, options, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM filter_configs
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list filter configs: %w", err)
	}
	defer rows.Close()

	var (
		configs    []domain.FilterConfig
		totalCount int
	)

	for rows.Next() {
		var (
			cfg         domain.FilterConfig
			optionsJSON []byte
		)

		if err := rows.Scan(
			&cfg.ID,
			&cfg.Shop,
			&cfg.Name,
			&cfg.Active,
			&cfg.Version,
			&optionsJSON,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan filter config row: %w", err)
		}

		if err := unmarshalOptions(optionsJSON, &cfg); err != nil {
			return nil, 0, err
		}

		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate filter config rows: %w", err)
	}

	if configs == nil {
		configs = []domain.FilterConfig{}
	}

	return configs, totalCount, nil
}

// Update modifies an existing filter config and bumps its version.
func (r *FilterConfigRepository) Update(ctx context.Context, cfg *domain.FilterConfig) error {
	optionsJSON, err := json.Marshal(cfg.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	cfg.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE filter_configs
		SET name = $1, options = $2, version = version + 1, updated_at = $3
		WHERE id = $4
		RETURNING version`

	err = r.pool.QueryRow(ctx, query,
		cfg.Name,
		optionsJSON,
		cfg.UpdatedAt,
		cfg.ID,
	).Scan(&cfg.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("filter config", cfg.ID)
		}
		return fmt.Errorf("update filter config: %w", err)
	}

	return nil
}

// Delete removes a filter config by its ID.
func (r *FilterConfigRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM filter_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete filter config: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("filter config", id)
	}

	return nil
}

// Activate marks a config active and deactivates its shop's other configs in
// one transaction so the one-active-per-shop invariant holds.
func (r *FilterConfigRepository) Activate(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin activate tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var shop string
	err = tx.QueryRow(ctx, `SELECT shop FROM filter_configs WHERE id = $1 FOR UPDATE`, id).Scan(&shop)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("filter config", id)
		}
		return fmt.Errorf("lock filter config: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE filter_configs SET active = FALSE, updated_at = NOW() WHERE shop = $1 AND active AND id <> $2`, shop, id)
	if err != nil {
		return fmt.Errorf("deactivate sibling configs: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE filter_configs SET active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate filter config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit activate tx: %w", err)
	}

	return nil
}

// scanConfig is a helper that executes a query expected to return a single
// filter config row.
func (r *FilterConfigRepository) scanConfig(ctx context.Context, query string, args ...any) (*domain.FilterConfig, error) {
	var (
		cfg         domain.FilterConfig
		optionsJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.Shop,
		&cfg.Name,
		&cfg.Active,
		&cfg.Version,
		&optionsJSON,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan filter config: %w", err)
	}

	if err := unmarshalOptions(optionsJSON, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func unmarshalOptions(data []byte, cfg *domain.FilterConfig) error {
	if data != nil {
		if err := json.Unmarshal(data, &cfg.Options); err != nil {
			return fmt.Errorf("unmarshal options: %w", err)
		}
	}
	if cfg.Options == nil {
		cfg.Options = []domain.FilterOptionConfig{}
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
