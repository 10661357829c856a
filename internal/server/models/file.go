// Package models defines server-side data models persisted by the metadata
// store, plus the value objects exchanged with services.
package models

import "time"

// Category is the coarse media class of an artifact, derived from its mime
// type and never supplied by the client.
type Category string

const (
	CategoryPDF     Category = "pdf"
	CategoryImage   Category = "image"
	CategoryVideo   Category = "video"
	CategoryAudio   Category = "audio"
	CategoryUnknown Category = "unknown"
)

// Lifecycle tracks the two-phase retirement of a record.
//
//	active -> bytes_deleted -> retired
//
// bytes_deleted is persisted between the object-store delete and the
// metadata flip so an interrupted retirement can be resumed.
type Lifecycle string

const (
	LifecycleActive       Lifecycle = "active"
	LifecycleBytesDeleted Lifecycle = "bytes_deleted"
	LifecycleRetired      Lifecycle = "retired"
)

// FileRecord describes one uploaded artifact. The bytes themselves live in
// object storage under StorageKey.
type FileRecord struct {
	// RecordID is the metadata identity; independent of FileID and StorageKey.
	RecordID string
	// FileID is the identifier allocated when the upload grant was issued.
	FileID      string
	SessionID   string
	LogicalName string
	Category    Category
	// MimeType is the type declared by the uploader.
	MimeType   string
	SizeBytes  int64
	StorageKey string
	IsActive   bool
	Lifecycle  Lifecycle
	UploadedBy string
	// CreatedAt is assigned by the metadata store.
	CreatedAt time.Time
	RetiredAt *time.Time
}

// Servable reports whether the record's bytes may still be handed out.
func (f *FileRecord) Servable() bool {
	return f.IsActive && f.Lifecycle == LifecycleActive
}

// UploadGrant is the short-lived capability returned to the client. It is
// never persisted.
type UploadGrant struct {
	FileID       string
	StorageKey   string
	PresignedURL string
	ExpiresAt    time.Time
	// RequiredHeaders must be sent verbatim with the PUT; they are part of
	// the signature.
	RequiredHeaders map[string]string
}

// GrantRequest asks for an upload grant.
type GrantRequest struct {
	FileName  string
	MimeType  string
	SizeBytes *int64
	SessionID string
}

// FinalizeRequest reports a completed direct upload.
type FinalizeRequest struct {
	FileID     string
	FileName   string
	MimeType   string
	SizeBytes  *int64
	SessionID  string
	StorageKey string
	UploadedBy string
}

// FinalizedFile is a freshly created record with its derived URLs.
type FinalizedFile struct {
	Record      *FileRecord
	ViewURL     string
	DownloadURL string
}
