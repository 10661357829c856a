package httpapi

import (
	"time"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

type grantRequest struct {
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes *int64 `json:"sizeBytes"`
	SessionID string `json:"sessionId"`
}

type grantResponse struct {
	PresignedURL    string            `json:"presignedUrl"`
	FileID          string            `json:"fileId"`
	StorageKey      string            `json:"storageKey"`
	ExpiresAt       time.Time         `json:"expiresAt"`
	RequiredHeaders map[string]string `json:"requiredHeaders"`
}

func newGrantResponse(g *models.UploadGrant) grantResponse {
	headers := g.RequiredHeaders
	if headers == nil {
		headers = map[string]string{}
	}
	return grantResponse{
		PresignedURL:    g.PresignedURL,
		FileID:          g.FileID,
		StorageKey:      g.StorageKey,
		ExpiresAt:       g.ExpiresAt.UTC(),
		RequiredHeaders: headers,
	}
}

type finalizeRequest struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	SizeBytes  *int64 `json:"sizeBytes"`
	SessionID  string `json:"sessionId"`
	StorageKey string `json:"storageKey"`
}

// fileView is the client-facing shape of a FileRecord.
type fileView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Size        int64     `json:"size"`
	UploadDate  time.Time `json:"uploadDate"`
	SessionID   string    `json:"sessionId"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl"`
	IsActive    bool      `json:"isActive"`
}

func newFileView(f *models.FinalizedFile) fileView {
	return fileView{
		ID:          f.Record.RecordID,
		Name:        f.Record.LogicalName,
		Type:        string(f.Record.Category),
		Size:        f.Record.SizeBytes,
		UploadDate:  f.Record.CreatedAt.UTC(),
		SessionID:   f.Record.SessionID,
		URL:         f.ViewURL,
		DownloadURL: f.DownloadURL,
		IsActive:    f.Record.IsActive,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type createFolderRequest struct {
	StudentID   string `json:"studentId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SetActive   bool   `json:"setActive"`
}

type activateFolderRequest struct {
	StudentID string `json:"studentId"`
}

type folderView struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newFolderView(f *models.SessionFolder) folderView {
	return folderView{
		ID:          f.FolderID,
		StudentID:   f.StudentID,
		Name:        f.Name,
		Description: f.Description,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt.UTC(),
		UpdatedAt:   f.UpdatedAt.UTC(),
	}
}

type folderStatsView struct {
	Total          int    `json:"total"`
	Active         int    `json:"active"`
	Inactive       int    `json:"inactive"`
	ActiveFolderID string `json:"activeFolderId"`
}

type folderListResponse struct {
	Folders []folderView    `json:"folders"`
	Stats   folderStatsView `json:"stats"`
}
