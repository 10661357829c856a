package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/ids"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/storage"
)

// UploadService issues direct-upload grants and records finished uploads.
type UploadService struct {
	store  storage.ObjectStore
	files  files.Repository
	ids    ids.Allocator
	deps   Deps
	logger logging.Logger
}

func NewUploadService(store storage.ObjectStore, repo files.Repository, alloc ids.Allocator, deps Deps, logger logging.Logger) *UploadService {
	return &UploadService{
		store:  store,
		files:  repo,
		ids:    alloc,
		deps:   deps,
		logger: logger.With("module", "uploads"),
	}
}

func validateSessionID(sessionID string) error {
	if strings.Contains(sessionID, "/") {
		return validation("sessionId must not contain '/'")
	}
	return nil
}

func validateSize(size *int64) error {
	if size == nil {
		return validation("sizeBytes is required")
	}
	if *size < 0 {
		return validation("sizeBytes must not be negative")
	}
	return nil
}

// IssueGrant allocates a fileId and presigns a PUT for the derived storage
// key. Nothing is persisted.
func (s *UploadService) IssueGrant(ctx context.Context, req models.GrantRequest) (*models.UploadGrant, error) {
	if err := required(
		[2]string{"fileName", req.FileName},
		[2]string{"mimeType", req.MimeType},
		[2]string{"sessionId", req.SessionID},
	); err != nil {
		return nil, err
	}
	if err := validateSize(req.SizeBytes); err != nil {
		return nil, err
	}
	if err := validateSessionID(req.SessionID); err != nil {
		return nil, err
	}

	fileID := s.ids.FileID()
	key := ids.StorageKey(req.SessionID, fileID, req.FileName)

	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	put, err := s.store.PresignPut(ctx, key, storage.PutOptions{
		ContentType: req.MimeType,
		Metadata: map[string]string{
			"sessionid": req.SessionID,
			"filename":  req.FileName,
			"fileid":    fileID,
		},
		TTL: s.deps.GrantTTL,
	})
	if err != nil {
		s.logger.Error(ctx, "presign failed", "session_id", req.SessionID, "file_id", fileID, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "grant issued", "session_id", req.SessionID, "file_id", fileID, "size_bytes", *req.SizeBytes)

	return &models.UploadGrant{
		FileID:          fileID,
		StorageKey:      key,
		PresignedURL:    put.URL,
		ExpiresAt:       put.ExpiresAt,
		RequiredHeaders: put.RequiredHeaders,
	}, nil
}

// Finalize creates a metadata record for an upload the client reports as
// complete. The storage key must be the one IssueGrant derives for the same
// session, fileId and name. Calls are not deduplicated.
func (s *UploadService) Finalize(ctx context.Context, req models.FinalizeRequest) (*models.FinalizedFile, error) {
	if err := required(
		[2]string{"fileId", req.FileID},
		[2]string{"fileName", req.FileName},
		[2]string{"mimeType", req.MimeType},
		[2]string{"sessionId", req.SessionID},
		[2]string{"storageKey", req.StorageKey},
	); err != nil {
		return nil, err
	}
	if err := validateSize(req.SizeBytes); err != nil {
		return nil, err
	}
	if err := validateSessionID(req.SessionID); err != nil {
		return nil, err
	}
	if want := ids.StorageKey(req.SessionID, req.FileID, req.FileName); req.StorageKey != want {
		return nil, validation("storageKey does not match sessionId, fileId and fileName")
	}

	uploadedBy := req.UploadedBy
	if uploadedBy == "" {
		uploadedBy = common.AnonymousUploader
	}

	rec := &models.FileRecord{
		RecordID:    s.ids.RecordID(),
		FileID:      req.FileID,
		SessionID:   req.SessionID,
		LogicalName: req.FileName,
		Category:    ClassifyMime(req.MimeType),
		MimeType:    req.MimeType,
		SizeBytes:   *req.SizeBytes,
		StorageKey:  req.StorageKey,
		IsActive:    true,
		Lifecycle:   models.LifecycleActive,
		UploadedBy:  uploadedBy,
	}

	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	if err := s.files.Create(ctx, rec); err != nil {
		s.logger.Error(ctx, "record insert failed", "session_id", req.SessionID, "file_id", req.FileID, "error", err)
		return nil, persistence("create record", err)
	}

	s.logger.Info(ctx, "upload finalized",
		"record_id", rec.RecordID, "session_id", rec.SessionID, "category", string(rec.Category), "uploaded_by", uploadedBy)

	return finalized(s.deps.PublicBaseURL, rec), nil
}
