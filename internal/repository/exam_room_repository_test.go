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

func newExamRoomRepoMock(t *testing.T) (*ExamRoomRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewExamRoomRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func examRoomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "exam_date", "start_time", "end_time", "semester", "session_type", "room_code", "exam_type", "created_at"})
}

func TestExamRoomRepositoryListByFilter(t *testing.T) {
	repo, mock, cleanup := newExamRoomRepoMock(t)
	defer cleanup()

	rows := examRoomRows().
		AddRow("r1", "2025-06-02", "08:00", "10:00", "S1", "principal", "A101", "written", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM exam_rooms WHERE 1=1 AND semester = $1 AND session_type = $2 ORDER BY exam_date ASC, start_time ASC, room_code ASC")).
		WithArgs("S1", "principal").
		WillReturnRows(rows)

	rooms, err := repo.ListByFilter(context.Background(), models.ExamRoomFilter{Semester: "S1", SessionType: "principal"})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "A101", rooms[0].RoomCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRoomRepositoryListBySlot(t *testing.T) {
	repo, mock, cleanup := newExamRoomRepoMock(t)
	defer cleanup()

	rows := examRoomRows().
		AddRow("r1", "2025-06-02", "08:00", "10:00", "S1", "principal", "A101", "", time.Now()).
		AddRow("r2", "2025-06-02", "08:00", "10:00", "S1", "principal", "B204", "", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM exam_rooms WHERE exam_date = $1 AND start_time = $2 ORDER BY room_code ASC")).
		WithArgs("2025-06-02", "08:00").
		WillReturnRows(rows)

	rooms, err := repo.ListBySlot(context.Background(), "2025-06-02", "08:00")
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRoomRepositoryBulkInsert(t *testing.T) {
	repo, mock, cleanup := newExamRoomRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO exam_rooms").
		WithArgs(sqlmock.AnyArg(), "2025-06-02", "08:00", "10:00", "S1", "principal", "A101", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO exam_rooms").
		WithArgs(sqlmock.AnyArg(), "2025-06-02", "08:00", "10:00", "S1", "principal", "B204", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rooms := []models.ExamRoom{
		{Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00", Semester: "S1", SessionType: "principal", RoomCode: "A101"},
		{Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00", Semester: "S1", SessionType: "principal", RoomCode: "B204"},
	}
	require.NoError(t, repo.BulkInsert(context.Background(), repo.db, rooms))
	assert.NotEmpty(t, rooms[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRoomRepositoryDeleteByScope(t *testing.T) {
	repo, mock, cleanup := newExamRoomRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_rooms WHERE semester = $1 AND session_type = $2")).
		WithArgs("S1", "principal").
		WillReturnResult(sqlmock.NewResult(0, 9))

	deleted, err := repo.DeleteByScope(context.Background(), repo.db, "S1", "principal")
	require.NoError(t, err)
	assert.Equal(t, int64(9), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
