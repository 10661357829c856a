package models

import "time"

// SessionFolder groups a student's session content. At most one folder per
// student is active at any time.
type SessionFolder struct {
	FolderID    string
	StudentID   string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FolderStats summarises a student's folders.
type FolderStats struct {
	Total          int
	Active         int
	Inactive       int
	ActiveFolderID string
}

// CreateFolderRequest is the input of the folder registry's Create.
type CreateFolderRequest struct {
	StudentID   string
	Name        string
	Description string
	SetActive   bool
}
