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

func newAssignmentRepoMock(t *testing.T) (*AssignmentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewAssignmentRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func assignmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "teacher_id", "exam_date", "start_time", "end_time", "session_type", "semester", "room_code", "is_responsible", "created_at"})
}

func sessionKey() models.SessionKey {
	return models.SessionKey{Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00", SessionType: "principal", Semester: "S1"}
}

func TestAssignmentRepositoryListByScope(t *testing.T) {
	repo, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	rows := assignmentRows().
		AddRow("a1", "t1", "2025-06-02", "08:00", "10:00", "principal", "S1", "A101", true, time.Now()).
		AddRow("a2", "t2", "2025-06-02", "08:00", "10:00", "principal", "S1", "B204", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, exam_date, start_time, end_time, session_type, semester, room_code, is_responsible, created_at FROM assignments WHERE semester = $1 AND session_type = $2 ORDER BY exam_date ASC, start_time ASC, room_code ASC, teacher_id ASC")).
		WithArgs("S1", "principal").
		WillReturnRows(rows)

	list, err := repo.ListByScope(context.Background(), "S1", "principal")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsResponsible)
	assert.Equal(t, "B204", list[1].RoomCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListBySession(t *testing.T) {
	repo, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "exam_date", "start_time", "end_time", "session_type", "semester", "room_code", "is_responsible", "created_at", "teacher_name", "teacher_code", "teacher_grade"}).
		AddRow("a1", "t1", "2025-06-02", "08:00", "10:00", "principal", "S1", "A101", true, time.Now(), "Alice Prof", "T1", "PR")
	mock.ExpectQuery("SELECT a.id, a.teacher_id").
		WithArgs("2025-06-02", "08:00", "10:00", "principal", "S1").
		WillReturnRows(rows)

	details, err := repo.ListBySession(context.Background(), sessionKey())
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Alice Prof", details[0].TeacherName)
	assert.Equal(t, "PR", details[0].GradeCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryInsertFillsIdentity(t *testing.T) {
	repo, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(sqlmock.AnyArg(), "t1", "2025-06-02", "08:00", "10:00", "principal", "S1", "A101", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := models.Assignment{TeacherID: "t1", Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00", SessionType: "principal", Semester: "S1", RoomCode: "A101"}
	require.NoError(t, repo.Insert(context.Background(), repo.db, &a))
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteReportsExistence(t *testing.T) {
	repo, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM assignments").
		WithArgs("t1", "2025-06-02", "08:00", "10:00", "principal", "S1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	existed, err := repo.Delete(context.Background(), repo.db, "t1", sessionKey())
	require.NoError(t, err)
	assert.True(t, existed)

	mock.ExpectExec("DELETE FROM assignments").
		WithArgs("t9", "2025-06-02", "08:00", "10:00", "principal", "S1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	existed, err = repo.Delete(context.Background(), repo.db, "t9", sessionKey())
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteByScope(t *testing.T) {
	repo, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE semester = $1 AND session_type = $2")).
		WithArgs("S1", "principal").
		WillReturnResult(sqlmock.NewResult(0, 12))

	deleted, err := repo.DeleteByScope(context.Background(), repo.db, "S1", "principal")
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositorySetResponsible(t *testing.T) {
	repo, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE assignments SET is_responsible = FALSE").
		WithArgs("2025-06-02", "08:00", "10:00", "principal", "S1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE assignments SET is_responsible = TRUE").
		WithArgs("t1", "2025-06-02", "08:00", "10:00", "principal", "S1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetResponsible(context.Background(), repo.db, sessionKey(), "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositorySetResponsibleClearOnly(t *testing.T) {
	repo, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE assignments SET is_responsible = FALSE").
		WithArgs("2025-06-02", "08:00", "10:00", "principal", "S1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetResponsible(context.Background(), repo.db, sessionKey(), ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}
