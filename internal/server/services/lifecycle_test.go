package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetire_DeletesBytesAndSoftDeletes(t *testing.T) {
	f := newContentFixture()
	rec := f.add(t, "r1", "a.pdf", "application/pdf", []byte("x"))
	svc := NewLifecycleService(f.store, f.repo, testDeps, logging.Nop{})
	ctx := context.Background()

	require.NoError(t, svc.Retire(ctx, "r1"))
	assert.False(t, f.store.Has(rec.StorageKey))

	_, err := f.store.Get(ctx, rec.StorageKey)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := f.repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, models.LifecycleRetired, got.Lifecycle)
	assert.NotNil(t, got.RetiredAt)

	list, err := f.repo.ListBySession(ctx, "s1", false)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, svc.Retire(ctx, "r1"), "retiring twice succeeds")
}

func TestRetire_NotFound(t *testing.T) {
	svc := NewLifecycleService(storage.NewMemoryStore(), files.NewMemoryRepository(), testDeps, logging.Nop{})
	assert.ErrorIs(t, svc.Retire(context.Background(), "nope"), common.ErrorNotFound)
}

func TestRetire_StorageFailureLeavesMetadata(t *testing.T) {
	f := newContentFixture()
	rec := f.add(t, "r1", "a.pdf", "application/pdf", []byte("x"))
	f.store.Fail = errors.New("s3 down")
	svc := NewLifecycleService(f.store, f.repo, testDeps, logging.Nop{})

	err := svc.Retire(context.Background(), "r1")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)

	got, err := f.repo.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, models.LifecycleActive, got.Lifecycle)

	f.store.Fail = nil
	assert.True(t, f.store.Has(rec.StorageKey))
}

func TestRetire_ResumesFromBytesDeleted(t *testing.T) {
	f := newContentFixture()
	f.add(t, "r1", "a.pdf", "application/pdf", []byte("x"))
	failing := &failingFiles{Repository: f.repo, retireErr: errors.New("db down")}
	svc := NewLifecycleService(f.store, failing, testDeps, logging.Nop{})
	ctx := context.Background()

	err := svc.Retire(ctx, "r1")
	assert.ErrorIs(t, err, common.ErrPersistence)

	got, err := f.repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleBytesDeleted, got.Lifecycle)

	// the object is gone, so the record must not be served meanwhile
	content := NewContentService(f.store, f.repo, testDeps, logging.Nop{})
	_, err = content.Open(ctx, "r1", ModeView)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	failing.retireErr = nil
	f.store.Fail = errors.New("must not touch storage again")
	require.NoError(t, svc.Retire(ctx, "r1"))

	got, err = f.repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleRetired, got.Lifecycle)
}

func TestRetire_BytesDeletedPersistenceError(t *testing.T) {
	f := newContentFixture()
	f.add(t, "r1", "a.pdf", "application/pdf", []byte("x"))
	svc := NewLifecycleService(f.store, &failingFiles{Repository: f.repo, bytesDeletedErr: errors.New("db")}, testDeps, logging.Nop{})

	assert.ErrorIs(t, svc.Retire(context.Background(), "r1"), common.ErrPersistence)
}

func TestRetire_LostRaceIsSuccess(t *testing.T) {
	f := newContentFixture()
	f.add(t, "r1", "a.pdf", "application/pdf", []byte("x"))
	svc := NewLifecycleService(f.store, &failingFiles{
		Repository:      f.repo,
		bytesDeletedErr: common.ErrConflict,
		retireErr:       common.ErrConflict,
	}, testDeps, logging.Nop{})

	assert.NoError(t, svc.Retire(context.Background(), "r1"))
}
