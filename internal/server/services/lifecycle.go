package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/storage"
)

// LifecycleService retires records. Retirement deletes the bytes first and
// then flips the metadata; each step is persisted so a retry picks up where
// an interrupted call stopped.
type LifecycleService struct {
	store  storage.ObjectStore
	files  files.Repository
	deps   Deps
	logger logging.Logger
}

func NewLifecycleService(store storage.ObjectStore, repo files.Repository, deps Deps, logger logging.Logger) *LifecycleService {
	return &LifecycleService{
		store:  store,
		files:  repo,
		deps:   deps,
		logger: logger.With("module", "lifecycle"),
	}
}

// Retire soft-deletes a record. Retiring an already retired record succeeds.
func (s *LifecycleService) Retire(ctx context.Context, recordID string) error {
	rec, err := s.get(ctx, recordID)
	if err != nil {
		return err
	}

	switch rec.Lifecycle {
	case models.LifecycleRetired:
		s.logger.Debug(ctx, "record already retired", "record_id", recordID)
		return nil

	case models.LifecycleActive:
		if err := s.deleteObject(ctx, rec.StorageKey); err != nil {
			s.logger.Error(ctx, "object delete failed", "record_id", recordID, "storage_key", rec.StorageKey, "error", err)
			return err
		}
		if err := s.markBytesDeleted(ctx, recordID); err != nil {
			return err
		}
	}

	if err := s.markRetired(ctx, recordID); err != nil {
		return err
	}

	s.logger.Info(ctx, "record retired", "record_id", recordID, "session_id", rec.SessionID)
	return nil
}

func (s *LifecycleService) get(ctx context.Context, recordID string) (*models.FileRecord, error) {
	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	rec, err := s.files.GetByID(ctx, recordID)
	if err != nil {
		return nil, persistence("get record", err)
	}
	return rec, nil
}

func (s *LifecycleService) deleteObject(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()
	return s.store.Delete(ctx, key)
}

// markBytesDeleted treats a lost race as progress: another caller already
// moved the record past active.
func (s *LifecycleService) markBytesDeleted(ctx context.Context, recordID string) error {
	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	err := s.files.MarkBytesDeleted(ctx, recordID)
	if err == nil || errors.Is(err, common.ErrConflict) {
		return nil
	}
	return persistence("mark bytes deleted", err)
}

func (s *LifecycleService) markRetired(ctx context.Context, recordID string) error {
	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	err := s.files.MarkRetired(ctx, recordID)
	if err == nil || errors.Is(err, common.ErrConflict) {
		return nil
	}
	return persistence("mark retired", err)
}
