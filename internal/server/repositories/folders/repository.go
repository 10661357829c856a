// Package folders persists per-student session folders. Every implementation
// keeps at most one active folder per student, including under concurrent
// writers; a write that loses a race reports common.ErrConflict and may be
// retried.
package folders

import (
	"context"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

type Repository interface {
	// Create inserts f. When f.IsActive, the student's previously active
	// folder is deactivated in the same atomic step. CreatedAt and UpdatedAt
	// are filled from the store.
	Create(ctx context.Context, f *models.SessionFolder) error
	// Activate makes folderID the student's only active folder. It returns
	// common.ErrorNotFound when the folder does not exist or belongs to
	// another student.
	Activate(ctx context.Context, studentID, folderID string) (*models.SessionFolder, error)
	// ListByStudent returns the student's folders, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]*models.SessionFolder, error)
}
