package folders

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	columns = []string{"folder_id", "student_id", "name", "description", "is_active", "created_at", "updated_at"}
	ts      = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
)

const (
	lockQ       = `SELECT\s+pg_advisory_xact_lock\(hashtext\(\$1\)\)`
	deactivateQ = `(?s)UPDATE\s+session_folders\s+SET\s+is_active=false.*WHERE\s+student_id=\$1\s+AND\s+is_active\s+AND\s+folder_id<>\$2`
	insertQ     = `(?s)INSERT\s+INTO\s+session_folders\b.*RETURNING\s+created_at,\s+updated_at`
	activateQ   = `(?s)UPDATE\s+session_folders\s+SET\s+is_active=true.*WHERE\s+folder_id=\$1\s+AND\s+student_id=\$2\s+RETURNING`
)

func TestCreate_Active(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(lockQ).WithArgs("stu").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deactivateQ).WithArgs("stu", "f1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(insertQ).WithArgs("f1", "stu", "Week 1", "", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))
	mock.ExpectCommit()

	f := &models.SessionFolder{FolderID: "f1", StudentID: "stu", Name: "Week 1", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), f))
	assert.Equal(t, ts, f.CreatedAt)
	assert.Equal(t, ts, f.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InactiveSkipsLock(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(insertQ).WithArgs("f1", "stu", "Week 1", "d", false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))
	mock.ExpectCommit()

	f := &models.SessionFolder{FolderID: "f1", StudentID: "stu", Name: "Week 1", Description: "d"}
	require.NoError(t, repo.Create(context.Background(), f))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolationIsConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(lockQ).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deactivateQ).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.SessionFolder{FolderID: "f1", StudentID: "stu", Name: "x", IsActive: true})
	assert.ErrorIs(t, err, common.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_LockError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(lockQ).WillReturnError(errors.New("timeout"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.SessionFolder{FolderID: "f1", StudentID: "stu", Name: "x", IsActive: true})
	assert.EqualError(t, err, "lock error: timeout")
}

func TestActivate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(lockQ).WithArgs("stu").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(deactivateQ).WithArgs("stu", "f2").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(activateQ).WithArgs("f2", "stu").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("f2", "stu", "Week 2", "", true, ts, ts.Add(time.Minute)))
		mock.ExpectCommit()

		got, err := repo.Activate(context.Background(), "stu", "f2")
		require.NoError(t, err)
		assert.Equal(t, &models.SessionFolder{
			FolderID: "f2", StudentID: "stu", Name: "Week 2", IsActive: true,
			CreatedAt: ts, UpdatedAt: ts.Add(time.Minute),
		}, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not owned rolls back", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(lockQ).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(deactivateQ).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(activateQ).WithArgs("f9", "stu").WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectRollback()

		_, err := repo.Activate(context.Background(), "stu", "f9")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListByStudent(t *testing.T) {
	q := `(?s)SELECT\s+folder_id,.*FROM\s+session_folders\s+WHERE\s+student_id=\$1\s+ORDER\s+BY\s+created_at\s+DESC`

	t.Run("rows", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("stu").WillReturnRows(sqlmock.NewRows(columns).
			AddRow("f2", "stu", "B", "", true, ts.Add(time.Hour), ts.Add(time.Hour)).
			AddRow("f1", "stu", "A", "", false, ts, ts))

		got, err := repo.ListByStudent(context.Background(), "stu")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "f2", got[0].FolderID)
		assert.True(t, got[0].IsActive)
	})

	t.Run("empty", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("stu").WillReturnRows(sqlmock.NewRows(columns))

		got, err := repo.ListByStudent(context.Background(), "stu")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WillReturnError(errors.New("boom"))

		_, err := repo.ListByStudent(context.Background(), "stu")
		require.Error(t, err)
	})
}
