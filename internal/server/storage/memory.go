package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

// MemoryStore keeps objects in a map. It backs local development and tests;
// Put stands in for the client's direct upload.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	now     func() time.Time

	// Fail, when set, is returned from every call.
	Fail error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object), now: time.Now}
}

func (m *MemoryStore) PresignPut(ctx context.Context, key string, opts PutOptions) (*PresignedPut, error) {
	if m.Fail != nil {
		return nil, fmt.Errorf("presign put %s: %w: %v", key, common.ErrStorageUnavailable, m.Fail)
	}
	expires := m.now().Add(opts.TTL)
	headers := map[string]string{}
	if opts.ContentType != "" {
		headers["Content-Type"] = opts.ContentType
	}
	for k, v := range opts.Metadata {
		headers["X-Amz-Meta-"+k] = v
	}
	u := url.URL{Scheme: "memory", Host: "bucket", Path: "/" + key, RawQuery: url.Values{"expires": {expires.UTC().Format(time.RFC3339)}}.Encode()}
	return &PresignedPut{URL: u.String(), ExpiresAt: expires, RequiredHeaders: headers}, nil
}

// Put stores body under key.
func (m *MemoryStore) Put(key string, body []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Body: append([]byte(nil), body...), ContentType: contentType}
}

// Has reports whether key exists.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*Object, error) {
	if m.Fail != nil {
		return nil, fmt.Errorf("get %s: %w: %v", key, common.ErrStorageUnavailable, m.Fail)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, common.ErrorNotFound)
	}
	return &Object{Body: append([]byte(nil), obj.Body...), ContentType: obj.ContentType}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if m.Fail != nil {
		return fmt.Errorf("delete %s: %w: %v", key, common.ErrStorageUnavailable, m.Fail)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
