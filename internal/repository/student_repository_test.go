package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campushub/activity-points-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs("1BY21CS001", "Asha", "BMSIT&M", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		USN:          "1BY21CS001",
		Name:         "Asha",
		College:      models.CollegeBMSIT,
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(context.Background(), student))
	require.False(t, student.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUSN(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"usn", "name", "college", "password_hash", "created_at"}).
		AddRow("1BY21CS001", "Asha", "NITTE", "hash", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT usn, name, college, password_hash, created_at FROM students WHERE usn = $1")).
		WithArgs("1BY21CS001").
		WillReturnRows(rows)

	student, err := repo.FindByUSN(context.Background(), "1BY21CS001")
	require.NoError(t, err)
	require.Equal(t, models.CollegeNitte, student.College)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByUSN(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE usn = $1 LIMIT 1")).
		WithArgs("1BY21CS001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	exists, err := repo.ExistsByUSN(context.Background(), "1BY21CS001")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE usn = $1 LIMIT 1")).
		WithArgs("1BY21CS999").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	exists, err = repo.ExistsByUSN(context.Background(), "1BY21CS999")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListUSNs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"usn"}).AddRow("1BY21CS001").AddRow("1BY21CS002")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT usn FROM students ORDER BY usn ASC")).
		WillReturnRows(rows)

	usns, err := repo.ListUSNs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1BY21CS001", "1BY21CS002"}, usns)
	require.NoError(t, mock.ExpectationsWereMet())
}
