// Package files persists FileRecord metadata. Records are never removed;
// retirement flips IsActive and advances Lifecycle.
package files

import (
	"context"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// Repository is implemented by the PostgreSQL, MongoDB and in-memory stores.
//
// Errors: GetByID returns common.ErrorNotFound for unknown ids. The two
// lifecycle transitions are conditional and return common.ErrConflict when
// the record is not in the expected state (or does not exist).
type Repository interface {
	// Create inserts rec and fills rec.CreatedAt from the store.
	Create(ctx context.Context, rec *models.FileRecord) error
	GetByID(ctx context.Context, recordID string) (*models.FileRecord, error)
	// ListBySession returns the session's records, newest first.
	ListBySession(ctx context.Context, sessionID string, includeInactive bool) ([]*models.FileRecord, error)
	// MarkBytesDeleted moves an active record to bytes_deleted.
	MarkBytesDeleted(ctx context.Context, recordID string) error
	// MarkRetired sets is_active=false and lifecycle=retired on a record that
	// is not yet retired.
	MarkRetired(ctx context.Context, recordID string) error
}
