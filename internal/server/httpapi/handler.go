// Package httpapi is the HTTP surface of the coordinator: upload grants and
// finalization, record listing and delivery, retirement, the storage proxy
// and the folder registry.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Pinger reports whether the metadata backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the routes.
type Handler struct {
	uploads   *services.UploadService
	content   *services.ContentService
	lifecycle *services.LifecycleService
	folders   *services.FolderService
	pinger    Pinger
	logger    logging.Logger
}

func NewHandler(
	uploads *services.UploadService,
	content *services.ContentService,
	lifecycle *services.LifecycleService,
	folders *services.FolderService,
	pinger Pinger,
	logger logging.Logger,
) *Handler {
	return &Handler{
		uploads:   uploads,
		content:   content,
		lifecycle: lifecycle,
		folders:   folders,
		pinger:    pinger,
		logger:    logger.With("module", "http_handler"),
	}
}

// Routes mounts every endpoint on a chi router. Middlewares run in the order
// given.
func (h *Handler) Routes(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/uploads/grant", h.IssueGrant)
	r.Post("/uploads/finalize", h.Finalize)

	// {id} is a session id on the bare path and a record id elsewhere.
	r.Get("/files/{id}", h.ListSession)
	r.Get("/files/{id}/info", h.Info)
	r.Get("/files/{id}/view", h.View)
	r.Get("/files/{id}/download", h.Download)
	r.Delete("/files/{id}", h.Retire)

	r.Get("/storage/*", h.Proxy)

	r.Post("/folders", h.CreateFolder)
	r.Get("/folders", h.ListFolders)
	r.Post("/folders/{folderId}/activate", h.ActivateFolder)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeValidation, "method not allowed")
	})

	return r
}

// fail logs server-side errors and writes the mapped error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, code, message)
}

var errEmptyBody = fmt.Errorf("%w: request body is empty", common.ErrValidation)

// decode reads a JSON body into v. Unknown fields are ignored.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: malformed JSON body: %v", common.ErrValidation, err)
	}
	return nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", common.ErrValidation, name)
	}
	return v, nil
}

// Healthz reports 200 when the metadata backend answers a ping.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn(ctx, "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
