package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examena/surveillance-api/internal/models"
)

func newTeacherRepoMock(t *testing.T) (*TeacherRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewTeacherRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func teacherRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "full_name", "grade_code", "participates", "created_at", "updated_at"})
}

func TestTeacherRepositoryList(t *testing.T) {
	repo, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	rows := teacherRows().
		AddRow("t1", "T1", "Alice Prof", "PR", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, full_name, grade_code, participates, created_at, updated_at FROM teachers WHERE 1=1 ORDER BY full_name ASC LIMIT 50 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.TeacherFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListWithFilters(t *testing.T) {
	repo, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	participates := true
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND participates = $1 AND grade_code = $2 AND (LOWER(full_name) LIKE $3 OR LOWER(code) LIKE $3) ORDER BY full_name ASC LIMIT 10 OFFSET 10")).
		WithArgs(true, "PR", "%ali%").
		WillReturnRows(teacherRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(true, "PR", "%ali%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.TeacherFilter{
		Search:       "Ali",
		GradeCode:    "PR",
		Participates: &participates,
		Page:         2,
		PageSize:     10,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListParticipating(t *testing.T) {
	repo, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	rows := teacherRows().
		AddRow("t1", "T1", "Alice Prof", "PR", true, time.Now(), time.Now()).
		AddRow("t2", "T2", "Bob Conf", "MC", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE participates = TRUE ORDER BY id ASC")).
		WillReturnRows(rows)

	list, err := repo.ListParticipating(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryUpsert(t *testing.T) {
	repo, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "T1", "Alice Prof", "PR", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	teacher := models.Teacher{Code: "T1", FullName: "Alice Prof", GradeCode: "PR", Participates: true}
	require.NoError(t, repo.Upsert(context.Background(), &teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositorySetParticipation(t *testing.T) {
	repo, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET participates = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("t1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetParticipation(context.Background(), "t1", false))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET participates = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("ghost", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetParticipation(context.Background(), "ghost", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
