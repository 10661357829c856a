package folders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// MemoryRepository holds folders in process memory. A single mutex makes
// every write atomic, so the one-active rule holds trivially.
type MemoryRepository struct {
	mu      sync.Mutex
	folders map[string]memoryFolder
	seq     int64
	now     func() time.Time
}

type memoryFolder struct {
	f   models.SessionFolder
	seq int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{folders: make(map[string]memoryFolder), now: time.Now}
}

func (r *MemoryRepository) deactivateOthersLocked(studentID, keepID string, at time.Time) {
	for id, m := range r.folders {
		if m.f.StudentID == studentID && m.f.IsActive && id != keepID {
			m.f.IsActive = false
			m.f.UpdatedAt = at
			r.folders[id] = m
		}
	}
}

func (r *MemoryRepository) Create(_ context.Context, f *models.SessionFolder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[f.FolderID]; ok {
		return common.ErrConflict
	}

	now := r.now().UTC()
	if f.IsActive {
		r.deactivateOthersLocked(f.StudentID, f.FolderID, now)
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	r.seq++
	r.folders[f.FolderID] = memoryFolder{f: *f, seq: r.seq}
	return nil
}

func (r *MemoryRepository) Activate(_ context.Context, studentID, folderID string) (*models.SessionFolder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.folders[folderID]
	if !ok || m.f.StudentID != studentID {
		return nil, common.ErrorNotFound
	}

	now := r.now().UTC()
	r.deactivateOthersLocked(studentID, folderID, now)
	m.f.IsActive = true
	m.f.UpdatedAt = now
	r.folders[folderID] = m

	f := m.f
	return &f, nil
}

func (r *MemoryRepository) ListByStudent(_ context.Context, studentID string) ([]*models.SessionFolder, error) {
	r.mu.Lock()
	matched := make([]memoryFolder, 0)
	for _, m := range r.folders {
		if m.f.StudentID == studentID {
			matched = append(matched, m)
		}
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.f.CreatedAt.Equal(b.f.CreatedAt) {
			return a.f.CreatedAt.After(b.f.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*models.SessionFolder, 0, len(matched))
	for _, m := range matched {
		f := m.f
		result = append(result, &f)
	}
	return result, nil
}
