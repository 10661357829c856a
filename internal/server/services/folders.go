package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/ids"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/folders"
)

// maxConflictRetries bounds how often a folder write is retried after losing
// the one-active race to a concurrent writer.
const maxConflictRetries = 5

// minFolderNameLen is counted in runes after trimming.
const minFolderNameLen = 2

// FolderService is the per-student folder registry.
type FolderService struct {
	folders folders.Repository
	ids     ids.Allocator
	deps    Deps
	logger  logging.Logger
}

func NewFolderService(repo folders.Repository, alloc ids.Allocator, deps Deps, logger logging.Logger) *FolderService {
	return &FolderService{
		folders: repo,
		ids:     alloc,
		deps:    deps,
		logger:  logger.With("module", "folders"),
	}
}

// retry runs fn until it stops reporting common.ErrConflict or the attempts
// run out.
func (s *FolderService) retry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = func() error {
			ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
			defer cancel()
			return fn(ctx)
		}()
		if !errors.Is(err, common.ErrConflict) {
			break
		}
		s.logger.Warn(ctx, "folder write conflict", "op", op, "attempt", attempt)
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return persistence(op, err)
	}
	return nil
}

// Create adds a folder. With SetActive the new folder replaces the
// student's active one.
func (s *FolderService) Create(ctx context.Context, req models.CreateFolderRequest) (*models.SessionFolder, error) {
	if err := required([2]string{"studentId", req.StudentID}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < minFolderNameLen {
		return nil, validation("name must be at least %d characters", minFolderNameLen)
	}

	folder := &models.SessionFolder{
		FolderID:    s.ids.FolderID(),
		StudentID:   req.StudentID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IsActive:    req.SetActive,
	}

	err := s.retry(ctx, "create folder", func(ctx context.Context) error {
		return s.folders.Create(ctx, folder)
	})
	if err != nil {
		s.logger.Error(ctx, "create folder failed", "student_id", req.StudentID, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "folder created", "student_id", folder.StudentID, "folder_id", folder.FolderID, "active", folder.IsActive)
	return folder, nil
}

// SetActive makes folderID the student's active folder.
func (s *FolderService) SetActive(ctx context.Context, studentID, folderID string) (*models.SessionFolder, error) {
	if err := required([2]string{"studentId", studentID}, [2]string{"folderId", folderID}); err != nil {
		return nil, err
	}

	var folder *models.SessionFolder
	err := s.retry(ctx, "activate folder", func(ctx context.Context) error {
		f, err := s.folders.Activate(ctx, studentID, folderID)
		if err != nil {
			return err
		}
		folder = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "folder activated", "student_id", studentID, "folder_id", folderID)
	return folder, nil
}

// List returns the student's folders newest first together with their stats.
func (s *FolderService) List(ctx context.Context, studentID string) ([]*models.SessionFolder, models.FolderStats, error) {
	if err := required([2]string{"studentId", studentID}); err != nil {
		return nil, models.FolderStats{}, err
	}

	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	list, err := s.folders.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, models.FolderStats{}, persistence("list folders", err)
	}
	return list, ComputeStats(list), nil
}

// Stats summarises the student's folders.
func (s *FolderService) Stats(ctx context.Context, studentID string) (models.FolderStats, error) {
	_, stats, err := s.List(ctx, studentID)
	return stats, err
}

func ComputeStats(list []*models.SessionFolder) models.FolderStats {
	stats := models.FolderStats{Total: len(list)}
	for _, f := range list {
		if f.IsActive {
			stats.Active++
			stats.ActiveFolderID = f.FolderID
		}
	}
	stats.Inactive = stats.Total - stats.Active
	return stats
}
