package repomanager

import (
	"context"

	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/folders"
)

// MemoryRepositoryManager keeps all metadata in process memory.
type MemoryRepositoryManager struct {
	files   *files.MemoryRepository
	folders *folders.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		files:   files.NewMemoryRepository(),
		folders: folders.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Files() files.Repository             { return m.files }
func (m *MemoryRepositoryManager) Folders() folders.Repository         { return m.folders }
func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Ping(context.Context) error          { return nil }
func (m *MemoryRepositoryManager) Close(context.Context) error         { return nil }
