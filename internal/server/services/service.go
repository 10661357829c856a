// Package services implements the coordinator's operations on top of the
// object store and the metadata repositories: upload grants and
// finalization, content delivery, retirement and the folder registry.
//
// Services hold no request state. Every call into a store runs under its own
// timeout derived from the caller's context.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// Deps bundles the shared settings every service needs.
type Deps struct {
	StoreTimeout  time.Duration
	GrantTTL      time.Duration
	PublicBaseURL string
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

// persistence classifies a repository error. Sentinels the caller can act on
// pass through; everything else becomes ErrPersistence.
func persistence(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrConflict) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, common.ErrPersistence, err)
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return validation("%s is required", f[0])
		}
	}
	return nil
}

// FileURLs returns the view and download URLs of a record.
func FileURLs(baseURL, recordID string) (view, download string) {
	base := strings.TrimRight(baseURL, "/") + "/files/" + recordID
	return base + "/view", base + "/download"
}

func finalized(baseURL string, rec *models.FileRecord) *models.FinalizedFile {
	view, download := FileURLs(baseURL, rec.RecordID)
	return &models.FinalizedFile{Record: rec, ViewURL: view, DownloadURL: download}
}

// ClassifyMime derives the record category from a declared mime type.
func ClassifyMime(mimeType string) models.Category {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "pdf"):
		return models.CategoryPDF
	case strings.HasPrefix(m, "image/"):
		return models.CategoryImage
	case strings.HasPrefix(m, "video/"):
		return models.CategoryVideo
	case strings.HasPrefix(m, "audio/"):
		return models.CategoryAudio
	default:
		return models.CategoryUnknown
	}
}
