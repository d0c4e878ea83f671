package visits

import (
	"context"

	"github.com/mazensapp/visitlog/internal/client/models"
)

// Repository is the visit collection of the local store. Implementations
// must keep at most one row per identifier (live record or tombstone) and
// maintain the updated_at secondary index used for delta scans.
type Repository interface {
	// Add inserts a new visit and returns the stored record. When v.ID is
	// zero the store assigns the next free identifier. A duplicate id fails
	// with common.ErrConflict.
	Add(ctx context.Context, v *models.Visit) (*models.Visit, error)

	// Upsert inserts or overwrites unconditionally.
	Upsert(ctx context.Context, v *models.Visit) error

	// Remove physically deletes the row. Fails with common.ErrNotFound if
	// the identifier is absent.
	Remove(ctx context.Context, id int64) error

	// SoftRemove replaces the row with a tombstone stamped at timestamp.
	SoftRemove(ctx context.Context, id int64, timestamp int64) error

	// GetByID returns one entry (live or tombstone), or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Visit, error)

	// GetAll returns every entry including tombstones, ordered by id.
	GetAll(ctx context.Context) ([]models.Visit, error)

	// GetUpdatedSince returns entries with updated_at strictly greater than
	// epoch, ordered by updated_at. limit of 0 means no cap.
	GetUpdatedSince(ctx context.Context, epoch int64, limit int) ([]models.Visit, error)

	// NextID returns the smallest identifier above every stored one.
	NextID(ctx context.Context) (int64, error)

	// Clear drops every entry.
	Clear(ctx context.Context) error
}
