package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/httpapi"
	"github.com/dmitrijs2005/studyvault/internal/server/ids"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studyvault/internal/server/services"
	"github.com/dmitrijs2005/studyvault/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucketStore hands out grants that point at a local HTTP bucket which
// writes into the wrapped MemoryStore.
type bucketStore struct {
	*storage.MemoryStore
	bucket *httptest.Server
}

func (b *bucketStore) PresignPut(ctx context.Context, key string, opts storage.PutOptions) (*storage.PresignedPut, error) {
	p, err := b.MemoryStore.PresignPut(ctx, key, opts)
	if err != nil {
		return nil, err
	}
	p.URL = b.bucket.URL + "/" + key
	return p, nil
}

func newBucket(t *testing.T, mem *storage.MemoryStore) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mem.Put(strings.TrimPrefix(r.URL.Path, "/"), body, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCoordinator(t *testing.T) (*HTTPClient, *storage.MemoryStore) {
	t.Helper()

	mem := storage.NewMemoryStore()
	store := &bucketStore{MemoryStore: mem, bucket: newBucket(t, mem)}
	repos := repomanager.NewMemoryRepositoryManager()
	deps := services.Deps{StoreTimeout: time.Second, GrantTTL: time.Minute, PublicBaseURL: "http://api.test"}
	log := logging.Nop{}

	h := httpapi.NewHandler(
		services.NewUploadService(store, repos.Files(), ids.Random{}, deps, log),
		services.NewContentService(store, repos.Files(), deps, log),
		services.NewLifecycleService(store, repos.Files(), deps, log),
		services.NewFolderService(repos.Folders(), ids.Random{}, deps, log),
		repos,
		log,
	)
	api := httptest.NewServer(h.Routes())
	t.Cleanup(api.Close)

	return NewHTTPClient(api.URL+"/", "", 5*time.Second), mem
}

func TestUpload_FullRoundTrip(t *testing.T) {
	c, mem := newCoordinator(t)
	ctx := context.Background()
	before := mem.Len()

	require.NoError(t, c.Ping(ctx))

	data := []byte(`{"notes":"week 1"}`)
	f, err := c.Upload(ctx, "sess-1", "notes.json", "application/json", data)
	require.NoError(t, err)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "notes.json", f.Name)
	assert.Equal(t, "sess-1", f.SessionID)
	assert.Equal(t, int64(len(data)), f.Size)
	assert.True(t, f.IsActive)
	assert.Equal(t, "http://api.test/files/"+f.ID+"/view", f.URL)
	assert.Equal(t, before+1, mem.Len())

	list, err := c.ListSession(ctx, "sess-1", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.ID, list[0].ID)

	require.NoError(t, c.Retire(ctx, f.ID))

	list, err = c.ListSession(ctx, "sess-1", false)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Equal(t, before, mem.Len())

	list, err = c.ListSession(ctx, "sess-1", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)
}

func TestUpload_GrantValidationError(t *testing.T) {
	c, _ := newCoordinator(t)

	_, err := c.Upload(context.Background(), "", "notes.json", "application/json", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestRetire_UnknownRecord(t *testing.T) {
	c, _ := newCoordinator(t)

	err := c.Retire(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestUpload_PutRejected(t *testing.T) {
	bucket := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer bucket.Close()

	finalized := false
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uploads/grant":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"presignedUrl":"`+bucket.URL+`/k","fileId":"f1","storageKey":"k","requiredHeaders":{}}`)
		case "/uploads/finalize":
			finalized = true
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer api.Close()

	c := NewHTTPClient(api.URL, "", time.Second)
	_, err := c.Upload(context.Background(), "s", "a.pdf", "application/pdf", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put: upload failed: 403")
	assert.False(t, finalized)
}

func TestDo_SendsBearerToken(t *testing.T) {
	var got string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer api.Close()

	c := NewHTTPClient(api.URL, "tok", time.Second)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "Bearer tok", got)
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want error
	}{
		{"validation", &APIError{Status: 400, Code: "validation_error"}, common.ErrValidation},
		{"conflict", &APIError{Status: 409, Code: "conflict"}, common.ErrConflict},
		{"unauthorized", &APIError{Status: 401, Code: "unauthorized"}, ErrUnauthorized},
		{"storage", &APIError{Status: 503, Code: "storage_unavailable"}, common.ErrStorageUnavailable},
		{"bare 502", &APIError{Status: 502}, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
		})
	}
}

func TestDo_Unreachable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", "", time.Second)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
