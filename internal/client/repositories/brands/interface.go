package brands

import (
	"context"

	"github.com/mazensapp/visitlog/internal/client/models"
)

// Repository is the brand collection of the local store. Same contract as
// the visit collection, keyed by client-generated string ids.
type Repository interface {
	// Add inserts a new brand; a duplicate id fails with common.ErrConflict.
	Add(ctx context.Context, b *models.Brand) (*models.Brand, error)

	// Upsert inserts or overwrites unconditionally.
	Upsert(ctx context.Context, b *models.Brand) error

	// Remove physically deletes the row, common.ErrNotFound when absent.
	Remove(ctx context.Context, id string) error

	// SoftRemove replaces the row with a tombstone stamped at timestamp.
	SoftRemove(ctx context.Context, id string, timestamp int64) error

	// GetByID returns one entry (live or tombstone), or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Brand, error)

	// GetAll returns every entry including tombstones, ordered by id.
	GetAll(ctx context.Context) ([]models.Brand, error)

	// GetUpdatedSince returns entries with updated_at strictly greater than
	// epoch, ordered by updated_at. limit of 0 means no cap.
	GetUpdatedSince(ctx context.Context, epoch int64, limit int) ([]models.Brand, error)

	// Clear drops every entry.
	Clear(ctx context.Context) error
}
