package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazensapp/visitlog/internal/client/models"
	"github.com/mazensapp/visitlog/internal/common"
)

func TestVisitAdd_Offline_AssignsIDAndStamp(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	svc := NewVisitService(repos, &fakeClient{}, AlwaysOffline, testLogger())

	created, err := svc.Add(ctx, models.Visit{Client: "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.ID)
	assert.Positive(t, created.UpdatedAt)
	assert.EqualValues(t, 0, epochOf(t, repos))

	second, err := svc.Add(ctx, models.Visit{Client: "bob"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.ID)
}

func TestVisitAdd_Online_MirrorsServerRecord(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	fc := &fakeClient{CreateVisitResp: &models.Visit{ID: 7, Client: "alice", UpdatedAt: 900}}
	svc := NewVisitService(repos, fc, AlwaysOnline, testLogger())

	created, err := svc.Add(ctx, models.Visit{Client: "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, created.ID)

	got, err := repos.Visits.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 900, got.UpdatedAt)
	assert.EqualValues(t, 900, epochOf(t, repos))
}

func TestVisitAdd_Online_RemoteFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	fc := &fakeClient{VisitErr: common.ErrTransport}
	svc := NewVisitService(repos, fc, AlwaysOnline, testLogger())

	_, err := svc.Add(ctx, models.Visit{Client: "alice"})
	require.ErrorIs(t, err, common.ErrTransport)

	all, err := repos.Visits.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVisitUpdate_Offline_Restamps(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 3, Client: "alice", UpdatedAt: 100}))
	svc := NewVisitService(repos, &fakeClient{}, AlwaysOffline, testLogger())

	updated, err := svc.Update(ctx, models.Visit{ID: 3, Client: "alice", Fix: "done"})
	require.NoError(t, err)
	assert.Greater(t, updated.UpdatedAt, int64(100))

	got, err := repos.Visits.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "done", got.Fix)
}

func TestVisitRemove_Offline_Tombstones(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 3, Client: "alice", UpdatedAt: 100}))
	svc := NewVisitService(repos, &fakeClient{}, AlwaysOffline, testLogger())

	require.NoError(t, svc.Remove(ctx, 3))

	got, err := repos.Visits.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Greater(t, got.UpdatedAt, int64(100))

	has, err := svc.Has(ctx, 3)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestVisitRemove_Online_PhysicalAndEpoch(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 3, Client: "alice", UpdatedAt: 100}))
	fc := &fakeClient{DeleteVisitTS: 700}
	svc := NewVisitService(repos, fc, AlwaysOnline, testLogger())

	require.NoError(t, svc.Remove(ctx, 3))
	assert.Equal(t, []int64{3}, fc.DeletedVisitIDs)

	_, err := repos.Visits.GetByID(ctx, 3)
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.EqualValues(t, 700, epochOf(t, repos))
}

func TestVisitMove_Offline_TombstoneOldInsertNew(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 5, Client: "alice", UpdatedAt: 100}))
	svc := NewVisitService(repos, &fakeClient{}, AlwaysOffline, testLogger())

	moved, err := svc.Move(ctx, 5, models.Visit{ID: 7, Client: "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, moved.ID)

	old, err := repos.Visits.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.True(t, old.Deleted)
	assert.Equal(t, moved.UpdatedAt, old.UpdatedAt, "both halves carry the same stamp")

	got, err := repos.Visits.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
}

func TestVisitMove_Offline_TargetTakenRollsBack(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 5, Client: "alice", UpdatedAt: 100}))
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 7, Client: "bob", UpdatedAt: 100}))
	svc := NewVisitService(repos, &fakeClient{}, AlwaysOffline, testLogger())

	_, err := svc.Move(ctx, 5, models.Visit{ID: 7, Client: "alice"})
	require.ErrorIs(t, err, common.ErrConflict)

	// the tombstone on 5 must have rolled back with the failed insert
	old, err := repos.Visits.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.False(t, old.Deleted)
}

func TestVisitMove_Online(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 5, Client: "alice", UpdatedAt: 100}))
	fc := &fakeClient{
		DeleteVisitTS:   940,
		CreateVisitResp: &models.Visit{ID: 7, Client: "alice", UpdatedAt: 950},
	}
	svc := NewVisitService(repos, fc, AlwaysOnline, testLogger())

	moved, err := svc.Move(ctx, 5, models.Visit{ID: 7, Client: "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, moved.ID)
	assert.Equal(t, []int64{5}, fc.DeletedVisitIDs)

	_, err = repos.Visits.GetByID(ctx, 5)
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.EqualValues(t, 950, epochOf(t, repos))
}

func TestVisitList_ExcludesTombstones(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.Upsert(ctx, &models.Visit{ID: 1, Client: "alice", UpdatedAt: 100}))
	require.NoError(t, repos.Visits.SoftRemove(ctx, 2, 120))
	svc := NewVisitService(repos, &fakeClient{}, AlwaysOffline, testLogger())

	live, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.EqualValues(t, 1, live[0].ID)
}

func TestVisitNextID_SkipsTombstones(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	require.NoError(t, repos.Visits.SoftRemove(ctx, 41, 120))
	svc := NewVisitService(repos, &fakeClient{}, AlwaysOffline, testLogger())

	id, err := svc.NextID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id, "tombstoned ids stay reserved")
}

func TestVisitService_NotReady(t *testing.T) {
	svc := NewVisitService(nil, &fakeClient{}, AlwaysOffline, testLogger())
	_, err := svc.Add(context.Background(), models.Visit{})
	require.ErrorIs(t, err, common.ErrNotReady)
}
