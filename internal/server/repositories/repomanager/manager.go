// Package repomanager wires the metadata backends. Each RepositoryManager
// vends the files and folders repositories for one backend and owns its
// schema setup and connection lifetime.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/studyvault/internal/server/config"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/folders"
)

type RepositoryManager interface {
	// RunMigrations brings the backend schema (tables or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Files() files.Repository
	Folders() folders.Repository
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend selected by cfg.MetadataBackend.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.MetadataBackend {
	case config.BackendPostgres:
		db, err := sqlOpen("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return NewPostgresRepositoryManager(db)
	case config.BackendMongo:
		return OpenMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.BackendMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", cfg.MetadataBackend)
	}
}
