package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mazensapp/visitlog/internal/client/client"
	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/common"
	"github.com/mazensapp/visitlog/internal/logging"
)

// BrandService implements the single-record mutation paths for brands.
// Brand identifiers are generated here (UUID), so creates never depend on
// the server's id sequence and work identically offline.
type BrandService struct {
	repos *client.Repositories
	api   client.Client
	mode  ModeProvider
	log   logging.Logger
}

func NewBrandService(repos *client.Repositories, api client.Client, mode ModeProvider, log logging.Logger) *BrandService {
	return &BrandService{repos: repos, api: api, mode: mode, log: log.With("component", "brands")}
}

func (s *BrandService) ready() error {
	if s.repos == nil || s.repos.DB == nil {
		return common.ErrNotReady
	}
	return nil
}

// Add creates a brand under a fresh UUID.
func (s *BrandService) Add(ctx context.Context, b models.Brand) (*models.Brand, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	b.ID = uuid.NewString()

	if s.mode.Offline() {
		b.UpdatedAt = models.NowMillis()
		return s.repos.Brands.Add(ctx, &b)
	}

	created, err := s.api.CreateBrand(ctx, &b)
	if err != nil {
		return nil, fmt.Errorf("creating brand: %w", err)
	}
	if _, err := s.repos.Brands.Add(ctx, created); err != nil {
		return nil, err
	}
	if err := advanceEpoch(ctx, s.repos, created.UpdatedAt); err != nil {
		return nil, err
	}
	return created, nil
}

// Update overwrites a brand keeping its identifier.
func (s *BrandService) Update(ctx context.Context, b models.Brand) (*models.Brand, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if s.mode.Offline() {
		b.UpdatedAt = models.NowMillis()
		if err := s.repos.Brands.Upsert(ctx, &b); err != nil {
			return nil, err
		}
		return &b, nil
	}

	updated, err := s.api.UpdateBrand(ctx, &b)
	if err != nil {
		return nil, fmt.Errorf("updating brand: %w", err)
	}
	if err := s.repos.Brands.Upsert(ctx, updated); err != nil {
		return nil, err
	}
	if err := advanceEpoch(ctx, s.repos, updated.UpdatedAt); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpsertModel registers a device model under the brand if not yet present.
func (s *BrandService) UpsertModel(ctx context.Context, id string, model string) (*models.Brand, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	b, err := s.repos.Brands.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Deleted {
		return nil, fmt.Errorf("brand %s: %w", id, common.ErrNotFound)
	}
	if b.HasModel(model) {
		return b, nil
	}
	b.Models = append(b.Models, model)
	return s.Update(ctx, *b)
}

// Remove deletes a brand: a tombstone offline, a confirmed server delete
// mirrored as a physical remove online.
func (s *BrandService) Remove(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if s.mode.Offline() {
		return s.repos.Brands.SoftRemove(ctx, id, models.NowMillis())
	}

	timestamp, err := s.api.DeleteBrand(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting brand: %w", err)
	}
	if err := s.repos.Brands.Remove(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return advanceEpoch(ctx, s.repos, timestamp)
}

// List returns live brands ordered by id.
func (s *BrandService) List(ctx context.Context) ([]models.Brand, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.repos.Brands.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	live := make([]models.Brand, 0, len(all))
	for _, b := range all {
		if !b.Deleted {
			live = append(live, b)
		}
	}
	return live, nil
}
