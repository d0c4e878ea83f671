package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mazensapp/visitlog/internal/client/client"
	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/client/repositories/visits"
	"github.com/mazensapp/visitlog/internal/common"
	"github.com/mazensapp/visitlog/internal/dbx"
	"github.com/mazensapp/visitlog/internal/logging"
)

// VisitService implements the single-record mutation paths for visits.
// Every mutation follows the same two-branch contract: offline stamps the
// wall clock and writes locally only; online calls the server first,
// mirrors its authoritative record, then advances the epoch.
type VisitService struct {
	repos *client.Repositories
	api   client.Client
	mode  ModeProvider
	log   logging.Logger
}

func NewVisitService(repos *client.Repositories, api client.Client, mode ModeProvider, log logging.Logger) *VisitService {
	return &VisitService{repos: repos, api: api, mode: mode, log: log.With("component", "visits")}
}

func (s *VisitService) ready() error {
	if s.repos == nil || s.repos.DB == nil {
		return common.ErrNotReady
	}
	return nil
}

// Add creates a visit. With a zero id the identifier is assigned by the
// server (online) or by the local store (offline).
func (s *VisitService) Add(ctx context.Context, v models.Visit) (*models.Visit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if s.mode.Offline() {
		v.UpdatedAt = models.NowMillis()
		return s.repos.Visits.Add(ctx, &v)
	}

	created, err := s.api.CreateVisit(ctx, &v)
	if err != nil {
		return nil, fmt.Errorf("creating visit: %w", err)
	}
	if _, err := s.repos.Visits.Add(ctx, created); err != nil {
		return nil, err
	}
	if err := advanceEpoch(ctx, s.repos, created.UpdatedAt); err != nil {
		return nil, err
	}
	return created, nil
}

// Update overwrites a visit keeping its identifier.
func (s *VisitService) Update(ctx context.Context, v models.Visit) (*models.Visit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if s.mode.Offline() {
		v.UpdatedAt = models.NowMillis()
		if err := s.repos.Visits.Upsert(ctx, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}

	updated, err := s.api.UpdateVisit(ctx, &v)
	if err != nil {
		return nil, fmt.Errorf("updating visit: %w", err)
	}
	if err := s.repos.Visits.Upsert(ctx, updated); err != nil {
		return nil, err
	}
	if err := advanceEpoch(ctx, s.repos, updated.UpdatedAt); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes a visit: a tombstone offline, a confirmed server delete
// mirrored as a physical remove online.
func (s *VisitService) Remove(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}

	if s.mode.Offline() {
		return s.repos.Visits.SoftRemove(ctx, id, models.NowMillis())
	}

	timestamp, err := s.api.DeleteVisit(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting visit: %w", err)
	}
	if err := s.repos.Visits.Remove(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return advanceEpoch(ctx, s.repos, timestamp)
}

// Move changes a visit's identifier. The identifier is the partition key
// for storage and conflict resolution, so a move is never a rename: it is
// an atomic delete-old plus insert-new pair. Both rows change in one local
// transaction; there is no state where both or neither exist.
func (s *VisitService) Move(ctx context.Context, oldID int64, v models.Visit) (*models.Visit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if s.mode.Offline() {
		v.UpdatedAt = models.NowMillis()
		var stored *models.Visit
		err := dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
			vr := visits.NewSQLiteRepository(tx)
			if err := vr.SoftRemove(ctx, oldID, v.UpdatedAt); err != nil {
				return err
			}
			var err error
			stored, err = vr.Add(ctx, &v)
			return err
		})
		if err != nil {
			return nil, err
		}
		return stored, nil
	}

	if _, err := s.api.DeleteVisit(ctx, oldID); err != nil {
		return nil, fmt.Errorf("deleting visit %d: %w", oldID, err)
	}
	created, err := s.api.CreateVisit(ctx, &v)
	if err != nil {
		return nil, fmt.Errorf("creating visit: %w", err)
	}

	err = dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vr := visits.NewSQLiteRepository(tx)
		if err := vr.Remove(ctx, oldID); err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		_, err := vr.Add(ctx, created)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := advanceEpoch(ctx, s.repos, created.UpdatedAt); err != nil {
		return nil, err
	}
	return created, nil
}

// List returns live visits ordered by id.
func (s *VisitService) List(ctx context.Context) ([]models.Visit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.repos.Visits.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	live := make([]models.Visit, 0, len(all))
	for _, v := range all {
		if !v.Deleted {
			live = append(live, v)
		}
	}
	return live, nil
}

// Get returns the live visit under id. A tombstoned visit reads as absent.
func (s *VisitService) Get(ctx context.Context, id int64) (*models.Visit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	v, err := s.repos.Visits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Deleted {
		return nil, fmt.Errorf("visit %d: %w", id, common.ErrNotFound)
	}
	return v, nil
}

// Has reports whether a live visit exists under id.
func (s *VisitService) Has(ctx context.Context, id int64) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	v, err := s.repos.Visits.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !v.Deleted, nil
}

// NextID returns the next free visit identifier for offline creates.
func (s *VisitService) NextID(ctx context.Context) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.repos.Visits.NextID(ctx)
}
