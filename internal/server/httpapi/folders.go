package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := h.folders.Create(r.Context(), models.CreateFolderRequest{
		StudentID:   req.StudentID,
		Name:        req.Name,
		Description: req.Description,
		SetActive:   req.SetActive,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFolderView(f))
}

func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	list, stats, err := h.folders.List(r.Context(), r.URL.Query().Get("studentId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := folderListResponse{
		Folders: make([]folderView, 0, len(list)),
		Stats: folderStatsView{
			Total:          stats.Total,
			Active:         stats.Active,
			Inactive:       stats.Inactive,
			ActiveFolderID: stats.ActiveFolderID,
		},
	}
	for _, f := range list {
		resp.Folders = append(resp.Folders, newFolderView(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ActivateFolder takes studentId from the JSON body, falling back to the
// query string.
func (h *Handler) ActivateFolder(w http.ResponseWriter, r *http.Request) {
	var req activateFolderRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			h.fail(w, r, err)
			return
		}
	}
	if req.StudentID == "" {
		req.StudentID = r.URL.Query().Get("studentId")
	}

	f, err := h.folders.SetActive(r.Context(), req.StudentID, chi.URLParam(r, "folderId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFolderView(f))
}
