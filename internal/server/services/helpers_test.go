package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/folders"
)

// seqIDs is a deterministic ids.Allocator.
type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) next(prefix string) string { return fmt.Sprintf("%s%d", prefix, s.n.Add(1)) }
func (s *seqIDs) FileID() string            { return s.next("file-") }
func (s *seqIDs) RecordID() string          { return s.next("rec-") }
func (s *seqIDs) FolderID() string          { return s.next("folder-") }

var testDeps = Deps{StoreTimeout: time.Second, GrantTTL: 10 * time.Minute, PublicBaseURL: "http://api.test"}

func int64p(v int64) *int64 { return &v }

// failingFiles wraps a files.Repository and overrides selected methods.
type failingFiles struct {
	files.Repository
	createErr       error
	getErr          error
	listErr         error
	bytesDeletedErr error
	retireErr       error
}

func (f *failingFiles) Create(ctx context.Context, rec *models.FileRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Repository.Create(ctx, rec)
}

func (f *failingFiles) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.GetByID(ctx, id)
}

func (f *failingFiles) ListBySession(ctx context.Context, sessionID string, includeInactive bool) ([]*models.FileRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Repository.ListBySession(ctx, sessionID, includeInactive)
}

func (f *failingFiles) MarkBytesDeleted(ctx context.Context, id string) error {
	if f.bytesDeletedErr != nil {
		return f.bytesDeletedErr
	}
	return f.Repository.MarkBytesDeleted(ctx, id)
}

func (f *failingFiles) MarkRetired(ctx context.Context, id string) error {
	if f.retireErr != nil {
		return f.retireErr
	}
	return f.Repository.MarkRetired(ctx, id)
}

// conflictingFolders returns ErrConflict a fixed number of times before
// delegating.
type conflictingFolders struct {
	folders.Repository
	conflicts int
	err       error
	calls     int
}

func (c *conflictingFolders) Create(ctx context.Context, f *models.SessionFolder) error {
	c.calls++
	if c.calls <= c.conflicts {
		return c.err
	}
	return c.Repository.Create(ctx, f)
}

func (c *conflictingFolders) Activate(ctx context.Context, studentID, folderID string) (*models.SessionFolder, error) {
	c.calls++
	if c.calls <= c.conflicts {
		return nil, c.err
	}
	return c.Repository.Activate(ctx, studentID, folderID)
}
