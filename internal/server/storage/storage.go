// Package storage is the object-store side of the coordinator: presigned
// upload grants, whole-object reads and deletes. Implementations translate
// backend failures into common.ErrorNotFound or common.ErrStorageUnavailable.
package storage

import (
	"context"
	"time"
)

// Object is a fully buffered object read from the store.
type Object struct {
	Body        []byte
	ContentType string
}

// PresignedPut is a single-use write capability for one key.
type PresignedPut struct {
	URL             string
	ExpiresAt       time.Time
	RequiredHeaders map[string]string
}

// PutOptions describe the object the grant allows the client to write.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
	TTL         time.Duration
}

// ObjectStore is implemented by S3Store and MemoryStore.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, opts PutOptions) (*PresignedPut, error)
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}
