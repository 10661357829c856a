package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx reply from the coordinator. It unwraps to the
// matching sentinel so callers can use errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_error":
		return common.ErrValidation
	case "not_found":
		return common.ErrorNotFound
	case "conflict":
		return common.ErrConflict
	case "unauthorized":
		return ErrUnauthorized
	case "storage_unavailable":
		return common.ErrStorageUnavailable
	case "persistence_error":
		return common.ErrPersistence
	}
	if e.Status >= 500 {
		return ErrUnavailable
	}
	return nil
}
