package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	"github.com/utafrali/StorefrontFilterGo/internal/repository"
	"github.com/utafrali/StorefrontFilterGo/pkg/database"
	apperrors "github.com/utafrali/StorefrontFilterGo/pkg/errors"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func setupRepo(t *testing.T) (*FilterConfigRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewFilterConfigRepository(mock)
	return repo, mock
}

func sampleConfig() *domain.FilterConfig {
	pos := 1
	show := true
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.FilterConfig{
		ID:      "cfg-001",
		Shop:    "demo.myshopify.com",
		Name:    "Default filters",
		Active:  true,
		Version: 3,
		Options: []domain.FilterOptionConfig{
			{
				Label:       "Color",
				OptionType:  "color",
				TargetScope: domain.TargetScopeAll,
				ShowCount:   &show,
				Position:    &pos,
				Status:      domain.OptionStatusPublished,
				OptionSettings: domain.OptionSettings{
					GroupBySimilarValues: true,
					TextTransform:        domain.TransformCapitalize,
				},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func configColumns() []string {
	return []string{"id", "shop", "name", "active", "version", "options", "created_at", "updated_at"}
}

func configRow(cfg *domain.FilterConfig) *pgxmock.Rows {
	optionsJSON, _ := json.Marshal(cfg.Options)
	return pgxmock.NewRows(configColumns()).
		AddRow(cfg.ID, cfg.Shop, cfg.Name, cfg.Active, cfg.Version, optionsJSON, cfg.CreatedAt, cfg.UpdatedAt)
}

func configListRow(cfg *domain.FilterConfig, totalCount int) *pgxmock.Rows {
	optionsJSON, _ := json.Marshal(cfg.Options)
	return pgxmock.NewRows(append(configColumns(), "total_count")).
		AddRow(cfg.ID, cfg.Shop, cfg.Name, cfg.Active, cfg.Version, optionsJSON, cfg.CreatedAt, cfg.UpdatedAt, totalCount)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestFilterConfigRepository_Create_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()
	optionsJSON, _ := json.Marshal(cfg.Options)

	mock.ExpectExec("INSERT INTO filter_configs").
		WithArgs(cfg.ID, cfg.Shop, cfg.Name, cfg.Active, cfg.Version, optionsJSON, cfg.CreatedAt, cfg.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), cfg)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_Create_UniqueViolation(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()
	optionsJSON, _ := json.Marshal(cfg.Options)

	mock.ExpectExec("INSERT INTO filter_configs").
		WithArgs(cfg.ID, cfg.Shop, cfg.Name, cfg.Active, cfg.Version, optionsJSON, cfg.CreatedAt, cfg.UpdatedAt).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), cfg)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID / GetActiveByShop
// ---------------------------------------------------------------------------

func TestFilterConfigRepository_GetByID_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()

	mock.ExpectQuery("SELECT .+ FROM filter_configs WHERE id").
		WithArgs(cfg.ID).
		WillReturnRows(configRow(cfg))

	result, err := repo.GetByID(context.Background(), cfg.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, cfg.ID, result.ID)
	assert.Equal(t, cfg.Shop, result.Shop)
	assert.Equal(t, cfg.Version, result.Version)
	require.Len(t, result.Options, 1)
	assert.Equal(t, "Color", result.Options[0].Label)
	assert.True(t, result.Options[0].OptionSettings.GroupBySimilarValues)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM filter_configs WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_GetActiveByShop_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()

	mock.ExpectQuery("SELECT .+ FROM filter_configs WHERE shop").
		WithArgs(cfg.Shop).
		WillReturnRows(configRow(cfg))

	result, err := repo.GetActiveByShop(context.Background(), cfg.Shop)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_GetActiveByShop_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM filter_configs WHERE shop").
		WithArgs("quiet.myshopify.com").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetActiveByShop(context.Background(), "quiet.myshopify.com")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_GetByID_NilOptionsColumn(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()
	row := pgxmock.NewRows(configColumns()).
		AddRow(cfg.ID, cfg.Shop, cfg.Name, cfg.Active, cfg.Version, nil, cfg.CreatedAt, cfg.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM filter_configs WHERE id").
		WithArgs(cfg.ID).
		WillReturnRows(row)

	result, err := repo.GetByID(context.Background(), cfg.ID)
	require.NoError(t, err)
	// Options must never be nil.
	assert.NotNil(t, result.Options)
	assert.Empty(t, result.Options)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestFilterConfigRepository_List_ByShop(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()

	mock.ExpectQuery("SELECT .+ FROM filter_configs").
		WithArgs(cfg.Shop, 20, 0).
		WillReturnRows(configListRow(cfg, 7))

	configs, total, err := repo.List(context.Background(), repository.FilterConfigFilter{Shop: cfg.Shop})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, configs, 1)
	assert.Equal(t, cfg.ID, configs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_List_EmptyResult(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM filter_configs").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(append(configColumns(), "total_count")))

	configs, total, err := repo.List(context.Background(), repository.FilterConfigFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, configs)
	assert.Empty(t, configs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_List_Pagination(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()

	mock.ExpectQuery("SELECT .+ FROM filter_configs").
		WithArgs(cfg.Shop, 10, 20).
		WillReturnRows(configListRow(cfg, 25))

	_, total, err := repo.List(context.Background(), repository.FilterConfigFilter{
		Shop:    cfg.Shop,
		Page:    3,
		PerPage: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestFilterConfigRepository_Update_BumpsVersion(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()
	optionsJSON, _ := json.Marshal(cfg.Options)

	mock.ExpectQuery("UPDATE filter_configs").
		WithArgs(cfg.Name, optionsJSON, pgxmock.AnyArg(), cfg.ID).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(4))

	err := repo.Update(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_Update_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cfg := sampleConfig()
	optionsJSON, _ := json.Marshal(cfg.Options)

	mock.ExpectQuery("UPDATE filter_configs").
		WithArgs(cfg.Name, optionsJSON, pgxmock.AnyArg(), cfg.ID).
		WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), cfg)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestFilterConfigRepository_Delete_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM filter_configs").
		WithArgs("cfg-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "cfg-001")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_Delete_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM filter_configs").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Activate
// ---------------------------------------------------------------------------

func TestFilterConfigRepository_Activate_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT shop FROM filter_configs WHERE id").
		WithArgs("cfg-001").
		WillReturnRows(pgxmock.NewRows([]string{"shop"}).AddRow("demo.myshopify.com"))
	mock.ExpectExec("UPDATE filter_configs SET active = FALSE").
		WithArgs("demo.myshopify.com", "cfg-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE filter_configs SET active = TRUE").
		WithArgs("cfg-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), "cfg-001")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterConfigRepository_Activate_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT shop FROM filter_configs WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
