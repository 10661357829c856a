package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/storage"
)

// Mode selects how Open presents an artifact.
type Mode string

const (
	ModeView     Mode = "view"
	ModeDownload Mode = "download"
)

const (
	contentTypePDF     = "application/pdf"
	contentTypeDefault = "application/octet-stream"

	// ProxyCacheControl marks proxied objects as immutable; keys are never reused.
	ProxyCacheControl = "public, max-age=31536000, immutable"
)

var categoryContentTypes = map[models.Category]string{
	models.CategoryPDF:   contentTypePDF,
	models.CategoryImage: "image/jpeg",
	models.CategoryVideo: "video/mp4",
	models.CategoryAudio: "audio/mpeg",
}

// Delivery is a fully buffered response body with the headers to send.
type Delivery struct {
	Body   []byte
	Header http.Header
}

// ContentService serves record metadata and artifact bytes.
type ContentService struct {
	store  storage.ObjectStore
	files  files.Repository
	deps   Deps
	logger logging.Logger
}

func NewContentService(store storage.ObjectStore, repo files.Repository, deps Deps, logger logging.Logger) *ContentService {
	return &ContentService{
		store:  store,
		files:  repo,
		deps:   deps,
		logger: logger.With("module", "content"),
	}
}

// Info returns a record and its URLs whatever its lifecycle state.
func (s *ContentService) Info(ctx context.Context, recordID string) (*models.FinalizedFile, error) {
	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	rec, err := s.files.GetByID(ctx, recordID)
	if err != nil {
		return nil, persistence("get record", err)
	}
	return finalized(s.deps.PublicBaseURL, rec), nil
}

// ListSession returns the session's records newest first.
func (s *ContentService) ListSession(ctx context.Context, sessionID string, includeInactive bool) ([]*models.FinalizedFile, error) {
	if err := required([2]string{"sessionId", sessionID}); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	recs, err := s.files.ListBySession(ctx, sessionID, includeInactive)
	if err != nil {
		return nil, persistence("list records", err)
	}

	result := make([]*models.FinalizedFile, 0, len(recs))
	for _, rec := range recs {
		result = append(result, finalized(s.deps.PublicBaseURL, rec))
	}
	return result, nil
}

// Open loads a servable record and its bytes. Retired records and records
// whose bytes are already deleted are reported as not found.
func (s *ContentService) Open(ctx context.Context, recordID string, mode Mode) (*Delivery, error) {
	if mode != ModeView && mode != ModeDownload {
		return nil, validation("unknown mode %q", mode)
	}

	rec, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !rec.Servable() {
		return nil, fmt.Errorf("record %s is %s: %w", recordID, rec.Lifecycle, common.ErrorNotFound)
	}

	obj, err := s.getObject(ctx, rec.StorageKey)
	if err != nil {
		s.logger.Warn(ctx, "object read failed", "record_id", recordID, "storage_key", rec.StorageKey, "error", err)
		return nil, err
	}

	if int64(len(obj.Body)) != rec.SizeBytes {
		s.logger.Warn(ctx, "stored size differs from declared size",
			"record_id", recordID, "declared", rec.SizeBytes, "actual", len(obj.Body))
	}

	h := http.Header{}
	switch mode {
	case ModeDownload:
		h.Set("Content-Type", contentTypeFor(rec))
		h.Set("Content-Disposition", ContentDisposition("attachment", rec.LogicalName))
	case ModeView:
		ct := contentTypeFor(rec)
		if isPDF(rec) {
			ct = contentTypePDF
		}
		h.Set("Content-Type", ct)
		h.Set("Content-Disposition", "inline")
		h.Set("X-Content-Type-Options", "nosniff")
	}
	h.Set("Content-Length", strconv.Itoa(len(obj.Body)))
	h.Set("Last-Modified", rec.CreatedAt.UTC().Format(http.TimeFormat))

	return &Delivery{Body: obj.Body, Header: h}, nil
}

// Proxy streams an object by key without a metadata lookup. Only keys under
// the sessions/ prefix are reachable.
func (s *ContentService) Proxy(ctx context.Context, key string) (*Delivery, error) {
	key = strings.TrimPrefix(key, "/")
	if !strings.HasPrefix(key, common.SessionKeyPrefix) || slices.Contains(strings.Split(key, "/"), "..") {
		return nil, fmt.Errorf("key %q: %w", key, common.ErrorNotFound)
	}

	obj, err := s.getObject(ctx, key)
	if err != nil {
		return nil, err
	}

	ct := obj.ContentType
	if ct == "" {
		ct = contentTypeByName(key)
	}

	h := http.Header{}
	h.Set("Content-Type", ct)
	h.Set("Content-Length", strconv.Itoa(len(obj.Body)))
	h.Set("Cache-Control", ProxyCacheControl)
	return &Delivery{Body: obj.Body, Header: h}, nil
}

func (s *ContentService) getRecord(ctx context.Context, recordID string) (*models.FileRecord, error) {
	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()

	rec, err := s.files.GetByID(ctx, recordID)
	if err != nil {
		return nil, persistence("get record", err)
	}
	return rec, nil
}

func (s *ContentService) getObject(ctx context.Context, key string) (*storage.Object, error) {
	ctx, cancel := withTimeout(ctx, s.deps.StoreTimeout)
	defer cancel()
	return s.store.Get(ctx, key)
}

func isPDF(rec *models.FileRecord) bool {
	return rec.Category == models.CategoryPDF ||
		strings.Contains(strings.ToLower(rec.MimeType), "pdf") ||
		strings.EqualFold(path.Ext(rec.LogicalName), ".pdf")
}

func contentTypeFor(rec *models.FileRecord) string {
	if ct, ok := categoryContentTypes[rec.Category]; ok {
		return ct
	}
	return contentTypeByName(rec.LogicalName)
}

func contentTypeByName(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return contentTypeDefault
}

// ContentDisposition renders a disposition header with a quoted ASCII
// filename and, for non-ASCII names, an RFC 5987 filename* parameter.
func ContentDisposition(disposition, name string) string {
	var (
		b        strings.Builder
		nonASCII bool
	)
	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
			nonASCII = true
			b.WriteByte('_')
		case unicode.IsControl(r):
			// dropped
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	v := fmt.Sprintf(`%s; filename="%s"`, disposition, b.String())
	if nonASCII {
		v += "; filename*=UTF-8''" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	}
	return v
}
