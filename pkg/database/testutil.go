package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool creates a pgxmock pool for repository tests. The returned mock
// satisfies DBTX, so it can stand in for a real pgxpool.Pool in
// NewFilterConfigRepository without touching a database. Tests should finish
// with ExpectationsWereMet to catch queries that never ran.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool()
}
