package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/studyvault/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListSession(w http.ResponseWriter, r *http.Request) {
	includeInactive, err := queryBool(r, "includeInactive")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.content.ListSession(r.Context(), chi.URLParam(r, "id"), includeInactive)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := make([]fileView, 0, len(list))
	for _, f := range list {
		views = append(views, newFileView(f))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.content.Info(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileView(info))
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	h.deliver(w, r, services.ModeView)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	h.deliver(w, r, services.ModeDownload)
}

func (h *Handler) deliver(w http.ResponseWriter, r *http.Request, mode services.Mode) {
	d, err := h.content.Open(r.Context(), chi.URLParam(r, "id"), mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, d, string(mode))
}

func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	d, err := h.content.Proxy(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, d, "proxy")
}

// write sends a buffered delivery. The body is complete before the status
// line goes out, so a failed read never produces a partial 200.
func (h *Handler) write(w http.ResponseWriter, r *http.Request, d *services.Delivery, mode string) {
	for k, v := range d.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(d.Body)
	if err != nil {
		h.logger.Warn(r.Context(), "client write failed", "path", r.URL.Path, "written", n, "error", err)
	}
	bytesServed.WithLabelValues(mode).Add(float64(n))
}

func (h *Handler) Retire(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if err := h.lifecycle.Retire(r.Context(), recordID); err != nil {
		h.fail(w, r, err)
		return
	}
	recordsRetired.Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "file " + recordID + " deleted"})
}
