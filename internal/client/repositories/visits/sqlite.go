package visits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/common"
	"github.com/mazensapp/visitlog/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx), so the same code runs standalone or inside a multi-collection
// transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const visitColumns = `id, date, client, contact, brand, model, problem, fix, amount, updated_at, deleted`

func (r *SQLiteRepository) Add(ctx context.Context, v *models.Visit) (*models.Visit, error) {
	query := `INSERT INTO visits (` + visitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// NULL id lets SQLite assign the next rowid, mirroring the
	// auto-increment key path for offline creates.
	var id any
	if v.ID != 0 {
		id = v.ID
	}

	res, err := r.db.ExecContext(ctx, query,
		id, v.Date, v.Client, v.Contact, v.Brand, v.Model, v.Problem, v.Fix, v.Amount, v.UpdatedAt, v.Deleted)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("visit %d: %w", v.ID, common.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert visit: %w", err)
	}

	stored := *v
	if v.ID == 0 {
		assigned, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read assigned visit id: %w", err)
		}
		stored.ID = assigned
	}
	return &stored, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, v *models.Visit) error {
	query := `INSERT INTO visits (` + visitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET date = excluded.date,
			client = excluded.client,
			contact = excluded.contact,
			brand = excluded.brand,
			model = excluded.model,
			problem = excluded.problem,
			fix = excluded.fix,
			amount = excluded.amount,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.Date, v.Client, v.Contact, v.Brand, v.Model, v.Problem, v.Fix, v.Amount, v.UpdatedAt, v.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert visit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM visits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("visit %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) SoftRemove(ctx context.Context, id int64, timestamp int64) error {
	ts := models.VisitTombstone(id, timestamp)
	return r.Upsert(ctx, &ts)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Visit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = ?`, id)
	v, err := scanVisit(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("visit %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select visit: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Visit, error) {
	return r.query(ctx, `SELECT `+visitColumns+` FROM visits ORDER BY id`)
}

func (r *SQLiteRepository) GetUpdatedSince(ctx context.Context, epoch int64, limit int) ([]models.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE updated_at > ? ORDER BY updated_at`
	args := []any{epoch}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *SQLiteRepository) NextID(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM visits`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next visit id: %w", err)
	}
	return next, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM visits`); err != nil {
		return fmt.Errorf("failed to clear visits: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Visit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select visits: %w", err)
	}
	defer rows.Close()

	var result []models.Visit
	for rows.Next() {
		v, err := scanVisit(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanVisit(scan func(dest ...any) error) (*models.Visit, error) {
	var v models.Visit
	err := scan(&v.ID, &v.Date, &v.Client, &v.Contact, &v.Brand, &v.Model, &v.Problem, &v.Fix, &v.Amount, &v.UpdatedAt, &v.Deleted)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
