package brands

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/common"
	"github.com/mazensapp/visitlog/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx). The models list is stored as a JSON array in a TEXT column.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, b *models.Brand) (*models.Brand, error) {
	ms, err := marshalModels(b.Models)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO brands (id, name, models, updated_at, deleted) VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, b.ID, b.Name, ms, b.UpdatedAt, b.Deleted)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("brand %s: %w", b.ID, common.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert brand: %w", err)
	}
	stored := *b
	return &stored, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, b *models.Brand) error {
	ms, err := marshalModels(b.Models)
	if err != nil {
		return err
	}
	query := `INSERT INTO brands (id, name, models, updated_at, deleted) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			models = excluded.models,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	if _, err := r.db.ExecContext(ctx, query, b.ID, b.Name, ms, b.UpdatedAt, b.Deleted); err != nil {
		return fmt.Errorf("failed to upsert brand: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("brand %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) SoftRemove(ctx context.Context, id string, timestamp int64) error {
	ts := models.BrandTombstone(id, timestamp)
	return r.Upsert(ctx, &ts)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, models, updated_at, deleted FROM brands WHERE id = ?`, id)
	b, err := scanBrand(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("brand %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select brand: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Brand, error) {
	return r.query(ctx, `SELECT id, name, models, updated_at, deleted FROM brands ORDER BY id`)
}

func (r *SQLiteRepository) GetUpdatedSince(ctx context.Context, epoch int64, limit int) ([]models.Brand, error) {
	query := `SELECT id, name, models, updated_at, deleted FROM brands WHERE updated_at > ? ORDER BY updated_at`
	args := []any{epoch}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM brands`); err != nil {
		return fmt.Errorf("failed to clear brands: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Brand, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select brands: %w", err)
	}
	defer rows.Close()

	var result []models.Brand
	for rows.Next() {
		b, err := scanBrand(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanBrand(scan func(dest ...any) error) (*models.Brand, error) {
	var b models.Brand
	var ms string
	if err := scan(&b.ID, &b.Name, &ms, &b.UpdatedAt, &b.Deleted); err != nil {
		return nil, err
	}
	if ms != "" {
		if err := json.Unmarshal([]byte(ms), &b.Models); err != nil {
			return nil, fmt.Errorf("failed to decode brand models: %w", err)
		}
	}
	return &b, nil
}

func marshalModels(ms []string) (string, error) {
	if ms == nil {
		ms = []string{}
	}
	out, err := json.Marshal(ms)
	if err != nil {
		return "", fmt.Errorf("failed to encode brand models: %w", err)
	}
	return string(out), nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
