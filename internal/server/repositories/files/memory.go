package files

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// MemoryRepository keeps records in process memory. It backs the "memory"
// metadata backend used in development and tests; nothing survives a restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	seq     int64
	now     func() time.Time
}

type memoryRecord struct {
	rec models.FileRecord
	seq int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]memoryRecord), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, rec *models.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.RecordID]; ok {
		return common.ErrConflict
	}
	rec.CreatedAt = r.now().UTC()
	r.seq++
	r.records[rec.RecordID] = memoryRecord{rec: *rec, seq: r.seq}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, recordID string) (*models.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.records[recordID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec := m.rec
	return &rec, nil
}

// ListBySession orders by CreatedAt and falls back to insertion order for
// equal timestamps.
func (r *MemoryRepository) ListBySession(_ context.Context, sessionID string, includeInactive bool) ([]*models.FileRecord, error) {
	r.mu.RLock()
	matched := make([]memoryRecord, 0)
	for _, m := range r.records {
		if m.rec.SessionID != sessionID {
			continue
		}
		if !includeInactive && !m.rec.IsActive {
			continue
		}
		matched = append(matched, m)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.rec.CreatedAt.Equal(b.rec.CreatedAt) {
			return a.rec.CreatedAt.After(b.rec.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*models.FileRecord, 0, len(matched))
	for _, m := range matched {
		rec := m.rec
		result = append(result, &rec)
	}
	return result, nil
}

func (r *MemoryRepository) MarkBytesDeleted(_ context.Context, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.records[recordID]
	if !ok || m.rec.Lifecycle != models.LifecycleActive {
		return common.ErrConflict
	}
	m.rec.Lifecycle = models.LifecycleBytesDeleted
	r.records[recordID] = m
	return nil
}

func (r *MemoryRepository) MarkRetired(_ context.Context, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.records[recordID]
	if !ok || m.rec.Lifecycle == models.LifecycleRetired {
		return common.ErrConflict
	}
	now := r.now().UTC()
	m.rec.IsActive = false
	m.rec.Lifecycle = models.LifecycleRetired
	m.rec.RetiredAt = &now
	r.records[recordID] = m
	return nil
}
