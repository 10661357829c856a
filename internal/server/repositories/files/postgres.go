package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/dbx"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordColumns = `record_id, file_id, session_id, logical_name, category, mime_type,
	size_bytes, storage_key, is_active, lifecycle, uploaded_by, created_at, retired_at`

// Create inserts a new record. created_at comes from the database clock.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.FileRecord) error {
	query := `
		INSERT INTO file_records (record_id, file_id, session_id, logical_name, category, mime_type,
			size_bytes, storage_key, is_active, lifecycle, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		rec.RecordID, rec.FileID, rec.SessionID, rec.LogicalName, string(rec.Category), rec.MimeType,
		rec.SizeBytes, rec.StorageKey, rec.IsActive, string(rec.Lifecycle), rec.UploadedBy,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the record regardless of its active flag.
func (r *PostgresRepository) GetByID(ctx context.Context, recordID string) (*models.FileRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM file_records WHERE record_id=$1`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file record: %w", err)
	}
	return rec, nil
}

// ListBySession returns records of one session ordered by created_at DESC.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, includeInactive bool) ([]*models.FileRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM file_records
		WHERE session_id=$1 AND (is_active OR $2)
		ORDER BY created_at DESC, record_id DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to select file records: %w", err)
	}
	defer rows.Close()

	result := make([]*models.FileRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkBytesDeleted records that the object behind an active record is gone.
func (r *PostgresRepository) MarkBytesDeleted(ctx context.Context, recordID string) error {
	query := `UPDATE file_records SET lifecycle='bytes_deleted' WHERE record_id=$1 AND lifecycle='active'`
	return r.execOne(ctx, query, recordID)
}

// MarkRetired soft-deletes the record.
func (r *PostgresRepository) MarkRetired(ctx context.Context, recordID string) error {
	query := `UPDATE file_records SET is_active=false, lifecycle='retired', retired_at=now()
		WHERE record_id=$1 AND lifecycle<>'retired'`
	return r.execOne(ctx, query, recordID)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, recordID string) error {
	res, err := r.db.ExecContext(ctx, query, recordID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.FileRecord, error) {
	var (
		rec       models.FileRecord
		category  string
		lifecycle string
		retiredAt sql.NullTime
	)
	err := row.Scan(&rec.RecordID, &rec.FileID, &rec.SessionID, &rec.LogicalName, &category, &rec.MimeType,
		&rec.SizeBytes, &rec.StorageKey, &rec.IsActive, &lifecycle, &rec.UploadedBy, &rec.CreatedAt, &retiredAt)
	if err != nil {
		return nil, err
	}
	rec.Category = models.Category(category)
	rec.Lifecycle = models.Lifecycle(lifecycle)
	if retiredAt.Valid {
		t := retiredAt.Time
		rec.RetiredAt = &t
	}
	return &rec, nil
}
