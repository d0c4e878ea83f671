package client

import (
	"context"

	"github.com/mazensapp/visitlog/internal/client/models"
)

// UpdateBatch is the server's view of everything changed after a given
// epoch, tombstones included.
type UpdateBatch struct {
	Visits []models.Visit `json:"visits"`
	Brands []models.Brand `json:"brands"`
}

// SyncRequest carries one round's upstream-bound changes for both
// collections in a single request.
type SyncRequest struct {
	VisitDeletes []int64        `json:"visitDeletes"`
	BrandDeletes []string       `json:"brandDeletes"`
	VisitUpserts []models.Visit `json:"visitUpserts"`
	BrandUpserts []models.Brand `json:"brandUpserts"`
}

// Empty reports whether the request carries no changes at all.
func (r *SyncRequest) Empty() bool {
	return len(r.VisitDeletes) == 0 && len(r.BrandDeletes) == 0 &&
		len(r.VisitUpserts) == 0 && len(r.BrandUpserts) == 0
}

// SyncResponse is the server's authoritative post-merge state for every
// pushed identifier, plus a fresh server timestamp.
type SyncResponse struct {
	Timestamp int64          `json:"timestamp"`
	Visits    []models.Visit `json:"visits"`
	Brands    []models.Brand `json:"brands"`
}

// Client is the remote side of the sync engine. Implementations are
// stateless request/response adapters; retry and offline policy live with
// the callers.
type Client interface {
	// Ping checks server liveness.
	Ping(ctx context.Context) error

	// UpdatesSince returns the server's changes with a stamp strictly
	// greater than epoch.
	UpdatesSince(ctx context.Context, epoch int64) (*UpdateBatch, error)

	// Sync pushes one round's upstream-bound sets and returns the server's
	// authoritative state for every affected identifier.
	Sync(ctx context.Context, req *SyncRequest) (*SyncResponse, error)

	// Upload replaces the server's collections with the given batch
	// (full-batch import, distinct from incremental sync).
	Upload(ctx context.Context, visits []models.Visit, brands []models.Brand) (*SyncResponse, error)

	// Single-record endpoints. Deletes return the server timestamp of the
	// recorded deletion.
	CreateVisit(ctx context.Context, v *models.Visit) (*models.Visit, error)
	UpdateVisit(ctx context.Context, v *models.Visit) (*models.Visit, error)
	DeleteVisit(ctx context.Context, id int64) (int64, error)
	CreateBrand(ctx context.Context, b *models.Brand) (*models.Brand, error)
	UpdateBrand(ctx context.Context, b *models.Brand) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id string) (int64, error)

	Close() error
}

// TokenSource supplies the bearer token attached to every request. The
// OAuth flow behind it is outside this package; tests use a static token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed value. An empty value
// leaves requests unauthenticated.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}
