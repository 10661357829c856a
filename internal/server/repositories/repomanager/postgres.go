package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/studyvault/internal/server/migrations"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/folders"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// PostgresRepositoryManager vends PostgreSQL-backed repositories sharing one
// *sql.DB pool.
type PostgresRepositoryManager struct {
	db      *sql.DB
	files   *files.PostgresRepository
	folders *folders.PostgresRepository
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{
		db:      db,
		files:   files.NewPostgresRepository(db),
		folders: folders.NewPostgresRepository(db),
	}, nil
}

func (m *PostgresRepositoryManager) Files() files.Repository     { return m.files }
func (m *PostgresRepositoryManager) Folders() folders.Repository { return m.folders }

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) Close(_ context.Context) error {
	return m.db.Close()
}
