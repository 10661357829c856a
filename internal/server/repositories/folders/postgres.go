package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/dbx"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// PostgresRepository serialises writers per student with a transaction-scoped
// advisory lock. The partial unique index on (student_id) WHERE is_active
// backs it up.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const folderColumns = `folder_id, student_id, name, description, is_active, created_at, updated_at`

func lockStudent(ctx context.Context, tx dbx.DBTX, studentID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, studentID); err != nil {
		return fmt.Errorf("lock error: %w", err)
	}
	return nil
}

func deactivateOthers(ctx context.Context, tx dbx.DBTX, studentID, keepID string) error {
	query := `UPDATE session_folders SET is_active=false, updated_at=now()
		WHERE student_id=$1 AND is_active AND folder_id<>$2`
	if _, err := tx.ExecContext(ctx, query, studentID, keepID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.SessionFolder) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if f.IsActive {
			if err := lockStudent(ctx, tx, f.StudentID); err != nil {
				return err
			}
			if err := deactivateOthers(ctx, tx, f.StudentID, f.FolderID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO session_folders (folder_id, student_id, name, description, is_active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at`

		return tx.QueryRowContext(ctx, query, f.FolderID, f.StudentID, f.Name, f.Description, f.IsActive).
			Scan(&f.CreatedAt, &f.UpdatedAt)
	})
	return translatePostgres(err)
}

func (r *PostgresRepository) Activate(ctx context.Context, studentID, folderID string) (*models.SessionFolder, error) {
	var folder *models.SessionFolder

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := lockStudent(ctx, tx, studentID); err != nil {
			return err
		}
		if err := deactivateOthers(ctx, tx, studentID, folderID); err != nil {
			return err
		}

		query := `UPDATE session_folders SET is_active=true, updated_at=now()
			WHERE folder_id=$1 AND student_id=$2
			RETURNING ` + folderColumns

		f, err := scanFolder(tx.QueryRowContext(ctx, query, folderID, studentID))
		if err != nil {
			return err
		}
		folder = f
		return nil
	})
	if err != nil {
		return nil, translatePostgres(err)
	}
	return folder, nil
}

func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.SessionFolder, error) {
	query := `SELECT ` + folderColumns + ` FROM session_folders
		WHERE student_id=$1
		ORDER BY created_at DESC, folder_id DESC`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	result := make([]*models.SessionFolder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// translatePostgres maps driver errors onto the common sentinels.
func translatePostgres(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("active folder race: %w", common.ErrConflict)
	default:
		return err
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*models.SessionFolder, error) {
	var f models.SessionFolder
	if err := row.Scan(&f.FolderID, &f.StudentID, &f.Name, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
