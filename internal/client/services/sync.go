package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mazensapp/visitlog/internal/client/client"
	"github.com/mazensapp/visitlog/internal/client/merge"
	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/client/repositories/brands"
	"github.com/mazensapp/visitlog/internal/client/repositories/visits"
	"github.com/mazensapp/visitlog/internal/common"
	"github.com/mazensapp/visitlog/internal/dbx"
	"github.com/mazensapp/visitlog/internal/logging"
)

// RoundResult is what one synchronization round hands back to observers:
// the persisted epoch and both collections with tombstones filtered out.
type RoundResult struct {
	Epoch  int64
	Synced bool // false when the round was skipped because of offline mode
	Visits []models.Visit
	Brands []models.Brand
}

// SyncService drives synchronization rounds against the remote server.
//
// Rounds are not safe to run concurrently; callers must not start a new
// round while one is in flight. A failed round leaves every already
// committed transaction intact and is safe to re-run: the next round
// re-derives the same result from the unchanged epoch.
type SyncService struct {
	repos *client.Repositories
	api   client.Client
	mode  ModeProvider
	log   logging.Logger
}

func NewSyncService(repos *client.Repositories, api client.Client, mode ModeProvider, log logging.Logger) *SyncService {
	return &SyncService{repos: repos, api: api, mode: mode, log: log.With("component", "sync")}
}

// RunRound performs one fetch→merge→apply→push→persist round. With fromZero
// the server is asked for its full history instead of the delta, which
// rebuilds a lost or wiped local replica.
//
// Offline, the round degrades to a local read: no remote calls, no epoch
// movement.
func (s *SyncService) RunRound(ctx context.Context, fromZero bool) (*RoundResult, error) {
	if s.repos == nil || s.repos.DB == nil {
		return nil, common.ErrNotReady
	}

	epoch, err := s.repos.Metadata.Epoch(ctx)
	if err != nil {
		return nil, err
	}

	if s.mode.Offline() {
		s.log.Debug(ctx, "offline, serving local data")
		return s.localResult(ctx, epoch, false)
	}

	localVisits, err := s.repos.Visits.GetUpdatedSince(ctx, epoch, 0)
	if err != nil {
		return nil, err
	}
	localBrands, err := s.repos.Brands.GetUpdatedSince(ctx, epoch, 0)
	if err != nil {
		return nil, err
	}

	fetchEpoch := epoch
	if fromZero {
		fetchEpoch = 0
	}
	upstream, err := s.api.UpdatesSince(ctx, fetchEpoch)
	if err != nil {
		return nil, fmt.Errorf("fetching server updates: %w", err)
	}

	vres := merge.Merge[int64](epoch, localVisits, upstream.Visits)
	bres := merge.Merge[string](epoch, localBrands, upstream.Brands)

	s.log.Debug(ctx, "merged change sets",
		"epoch", epoch,
		"localVisits", len(localVisits), "upstreamVisits", len(upstream.Visits),
		"localBrands", len(localBrands), "upstreamBrands", len(upstream.Brands))

	if err := s.applyLocal(ctx, &vres, &bres); err != nil {
		return nil, fmt.Errorf("applying server updates: %w", err)
	}

	newEpoch := max(vres.NewEpoch, bres.NewEpoch)

	pushedEpoch, err := s.push(ctx, &vres, &bres)
	if err != nil {
		return nil, fmt.Errorf("pushing local updates: %w", err)
	}
	newEpoch = max(newEpoch, pushedEpoch)

	// Only now is the watermark allowed to move: everything above has
	// durably committed. An interruption before this point re-derives the
	// same round from the stale epoch.
	if newEpoch != epoch {
		if err := s.repos.Metadata.SetEpoch(ctx, newEpoch); err != nil {
			return nil, err
		}
	}

	s.log.Info(ctx, "round complete", "epoch", newEpoch,
		"appliedVisits", len(vres.LocalUpserts)+len(vres.LocalDeletes),
		"pushedVisits", len(vres.UpstreamUpserts)+len(vres.UpstreamDeletes),
		"appliedBrands", len(bres.LocalUpserts)+len(bres.LocalDeletes),
		"pushedBrands", len(bres.UpstreamUpserts)+len(bres.UpstreamDeletes))

	return s.localResult(ctx, newEpoch, true)
}

// applyLocal commits everything the server won in one transaction spanning
// both collections.
func (s *SyncService) applyLocal(ctx context.Context, vres *merge.Result[int64, models.Visit], bres *merge.Result[string, models.Brand]) error {
	total := len(vres.LocalDeletes) + len(vres.LocalUpserts) + len(bres.LocalDeletes) + len(bres.LocalUpserts)
	if total == 0 {
		return nil
	}

	return dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vr := visits.NewSQLiteRepository(tx)
		br := brands.NewSQLiteRepository(tx)

		for _, id := range vres.LocalDeletes {
			if err := removeTolerant(vr.Remove(ctx, id)); err != nil {
				return err
			}
		}
		for _, id := range bres.LocalDeletes {
			if err := removeTolerant(br.Remove(ctx, id)); err != nil {
				return err
			}
		}
		for i := range vres.LocalUpserts {
			if err := vr.Upsert(ctx, &vres.LocalUpserts[i]); err != nil {
				return err
			}
		}
		for i := range bres.LocalUpserts {
			if err := br.Upsert(ctx, &bres.LocalUpserts[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// push sends the upstream-bound sets in one request and mirrors the
// server's authoritative response in one transaction. Returns the server
// timestamp, or 0 when there was nothing to push.
func (s *SyncService) push(ctx context.Context, vres *merge.Result[int64, models.Visit], bres *merge.Result[string, models.Brand]) (int64, error) {
	req := &client.SyncRequest{
		VisitDeletes: vres.UpstreamDeletes,
		BrandDeletes: bres.UpstreamDeletes,
		VisitUpserts: vres.UpstreamUpserts,
		BrandUpserts: bres.UpstreamUpserts,
	}
	if req.Empty() {
		return 0, nil
	}

	resp, err := s.api.Sync(ctx, req)
	if err != nil {
		return 0, err
	}

	err = dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vr := visits.NewSQLiteRepository(tx)
		br := brands.NewSQLiteRepository(tx)

		for _, id := range req.VisitDeletes {
			if err := removeTolerant(vr.Remove(ctx, id)); err != nil {
				return err
			}
		}
		for _, id := range req.BrandDeletes {
			if err := removeTolerant(br.Remove(ctx, id)); err != nil {
				return err
			}
		}
		// the server is the final arbiter of value and stamp for anything
		// it accepted
		for i := range resp.Visits {
			if err := vr.Upsert(ctx, &resp.Visits[i]); err != nil {
				return err
			}
		}
		for i := range resp.Brands {
			if err := br.Upsert(ctx, &resp.Brands[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return resp.Timestamp, nil
}

// Upload replaces both collections with the given batch (full import).
// Online the server performs the replace first and its authoritative state
// is mirrored; offline the batch lands locally under one wall-clock stamp
// and propagates on the next round.
func (s *SyncService) Upload(ctx context.Context, newVisits []models.Visit, newBrands []models.Brand) (*RoundResult, error) {
	if s.repos == nil || s.repos.DB == nil {
		return nil, common.ErrNotReady
	}

	if s.mode.Offline() {
		timestamp := models.NowMillis()
		err := dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
			vr := visits.NewSQLiteRepository(tx)
			br := brands.NewSQLiteRepository(tx)

			existingVisits, err := vr.GetAll(ctx)
			if err != nil {
				return err
			}
			for _, v := range existingVisits {
				if err := vr.SoftRemove(ctx, v.ID, timestamp); err != nil {
					return err
				}
			}
			existingBrands, err := br.GetAll(ctx)
			if err != nil {
				return err
			}
			for _, b := range existingBrands {
				if err := br.SoftRemove(ctx, b.ID, timestamp); err != nil {
					return err
				}
			}

			for i := range newVisits {
				if err := vr.Upsert(ctx, &newVisits[i]); err != nil {
					return err
				}
			}
			for i := range newBrands {
				if err := br.Upsert(ctx, &newBrands[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		epoch, err := s.repos.Metadata.Epoch(ctx)
		if err != nil {
			return nil, err
		}
		return s.localResult(ctx, epoch, false)
	}

	resp, err := s.api.Upload(ctx, newVisits, newBrands)
	if err != nil {
		return nil, fmt.Errorf("uploading records: %w", err)
	}

	err = dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vr := visits.NewSQLiteRepository(tx)
		br := brands.NewSQLiteRepository(tx)

		if err := vr.Clear(ctx); err != nil {
			return err
		}
		if err := br.Clear(ctx); err != nil {
			return err
		}
		for i := range resp.Visits {
			if err := vr.Upsert(ctx, &resp.Visits[i]); err != nil {
				return err
			}
		}
		for i := range resp.Brands {
			if err := br.Upsert(ctx, &resp.Brands[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := advanceEpoch(ctx, s.repos, resp.Timestamp); err != nil {
		return nil, err
	}
	return s.localResult(ctx, resp.Timestamp, true)
}

func (s *SyncService) localResult(ctx context.Context, epoch int64, synced bool) (*RoundResult, error) {
	allVisits, err := s.repos.Visits.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	allBrands, err := s.repos.Brands.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	res := &RoundResult{Epoch: epoch, Synced: synced}
	for _, v := range allVisits {
		if !v.Deleted {
			res.Visits = append(res.Visits, v)
		}
	}
	for _, b := range allBrands {
		if !b.Deleted {
			res.Brands = append(res.Brands, b)
		}
	}
	return res, nil
}

// removeTolerant ignores missing rows: a delete the other side already
// performed is not a conflict during round application.
func removeTolerant(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}
