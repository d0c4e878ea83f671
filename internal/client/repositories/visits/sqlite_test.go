package visits

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE visits (
  id INTEGER PRIMARY KEY,
  date INTEGER NOT NULL DEFAULT 0,
  client TEXT NOT NULL DEFAULT '',
  contact TEXT NOT NULL DEFAULT '',
  brand TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  problem TEXT NOT NULL DEFAULT '',
  fix TEXT NOT NULL DEFAULT '',
  amount REAL NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_visits_updated_at ON visits (updated_at);
`)
	require.NoError(t, err)
	return db
}

func TestAdd_AssignsIDWhenZero(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	v1, err := r.Add(ctx, &models.Visit{Client: "alice", UpdatedAt: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, v1.ID)

	v2, err := r.Add(ctx, &models.Visit{Client: "bob", UpdatedAt: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, v2.ID)
}

func TestAdd_DuplicateID_Conflict(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Add(ctx, &models.Visit{ID: 7, UpdatedAt: 10})
	require.NoError(t, err)

	_, err = r.Add(ctx, &models.Visit{ID: 7, UpdatedAt: 20})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestUpsert_InsertThenOverwrite(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 1, Client: "alice", UpdatedAt: 10}))
	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 1, Client: "bob", UpdatedAt: 20}))

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Client)
	assert.EqualValues(t, 20, got.UpdatedAt)
}

func TestRemove(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 1, UpdatedAt: 10}))
	require.NoError(t, r.Remove(ctx, 1))

	_, err := r.GetByID(ctx, 1)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.ErrorIs(t, r.Remove(ctx, 1), common.ErrNotFound)
}

func TestSoftRemove_LeavesTombstone(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 1, Client: "alice", UpdatedAt: 10}))
	require.NoError(t, r.SoftRemove(ctx, 1, 99))

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.EqualValues(t, 99, got.UpdatedAt)
	assert.Empty(t, got.Client) // payload dropped with the tombstone
}

func TestGetUpdatedSince_StrictLowerBound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 1, UpdatedAt: 100}))
	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 2, UpdatedAt: 200}))
	require.NoError(t, r.SoftRemove(ctx, 3, 300))

	got, err := r.GetUpdatedSince(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, got, 2) // 100 itself excluded
	assert.EqualValues(t, 2, got[0].ID)
	assert.EqualValues(t, 3, got[1].ID)
	assert.True(t, got[1].Deleted)

	capped, err := r.GetUpdatedSince(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.EqualValues(t, 1, capped[0].ID)
}

func TestNextID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	next, err := r.NextID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, next)

	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 41, UpdatedAt: 10}))
	next, err = r.NextID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, next)
}

func TestGetAll_IncludesTombstones(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Visit{ID: 2, UpdatedAt: 10}))
	require.NoError(t, r.SoftRemove(ctx, 1, 20))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0].ID) // ordered by id
	assert.True(t, got[0].Deleted)

	require.NoError(t, r.Clear(ctx))
	got, err = r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
