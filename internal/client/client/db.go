package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/mazensapp/visitlog/internal/client/migrations"
	"github.com/mazensapp/visitlog/internal/client/repositories/brands"
	"github.com/mazensapp/visitlog/internal/client/repositories/metadata"
	"github.com/mazensapp/visitlog/internal/client/repositories/visits"
)

// Repositories bundles the local store: both collections plus the metadata
// area holding the epoch watermark.
type Repositories struct {
	Visits   visits.Repository
	Brands   brands.Repository
	Metadata metadata.Repository
	DB       *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the client database at dsn, runs
// migrations and returns ready repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Single connection: the client is single-threaded (one round at a
	// time) and this keeps in-memory databases on one handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Visits:   visits.NewSQLiteRepository(db),
		Brands:   brands.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
		DB:       db,
	}, nil
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
