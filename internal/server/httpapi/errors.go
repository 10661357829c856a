package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

// Error codes carried in the "error" field of error responses.
const (
	CodeValidation         = "validation_error"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeUnauthorized       = "unauthorized"
	CodeStorageUnavailable = "storage_unavailable"
	CodePersistence        = "persistence_error"
	CodeInternal           = "internal_error"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// statusFor maps a service error onto a status code and error code. Server
// side failures get a fixed message so backend details stay in the logs.
func statusFor(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, CodeValidation, err.Error()
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized, "invalid or missing token"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, CodeNotFound, "not found"
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, CodeConflict, "concurrent update, retry the request"
	case errors.Is(err, common.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, CodeStorageUnavailable, "object storage unavailable"
	case errors.Is(err, common.ErrPersistence):
		return http.StatusInternalServerError, CodePersistence, "metadata store error"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal error"
	}
}
