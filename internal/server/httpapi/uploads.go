package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/studyvault/internal/server/auth"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

func (h *Handler) IssueGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	grant, err := h.uploads.IssueGrant(r.Context(), models.GrantRequest{
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
		SessionID: req.SessionID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	grantsIssued.Inc()
	writeJSON(w, http.StatusOK, newGrantResponse(grant))
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	uploadedBy, _ := auth.UserIDFromContext(r.Context())

	out, err := h.uploads.Finalize(r.Context(), models.FinalizeRequest{
		FileID:     req.FileID,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		SessionID:  req.SessionID,
		StorageKey: req.StorageKey,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	uploadsFinalized.WithLabelValues(string(out.Record.Category)).Inc()
	writeJSON(w, http.StatusCreated, newFileView(out))
}
