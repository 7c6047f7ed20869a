package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examena/surveillance-api/internal/models"
)

func examRoom(id, date, start, end, roomCode string) models.ExamRoom {
	return models.ExamRoom{
		ID:          id,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Semester:    "S1",
		SessionType: models.SessionPrincipal,
		RoomCode:    roomCode,
	}
}

func TestGroupSessionsMergesRoomsSharingSlot(t *testing.T) {
	rooms := []models.ExamRoom{
		examRoom("r1", "2025-06-02", "08:00", "10:00", "B204"),
		examRoom("r2", "2025-06-02", "08:00", "10:00", "A101"),
		examRoom("r3", "2025-06-02", "14:00", "16:00", "A101"),
	}

	sessions, err := GroupSessions(rooms, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	first := sessions[0]
	assert.Equal(t, "08:00", first.Key.StartTime)
	require.Len(t, first.Rooms, 2)
	assert.Equal(t, "A101", first.Rooms[0].RoomCode)
	assert.Equal(t, "B204", first.Rooms[1].RoomCode)
	assert.Equal(t, 4, first.Required)

	assert.Equal(t, "14:00", sessions[1].Key.StartTime)
	assert.Equal(t, 2, sessions[1].Required)
}

func TestGroupSessionsOrdersByDateThenStart(t *testing.T) {
	rooms := []models.ExamRoom{
		examRoom("r1", "2025-06-03", "08:00", "10:00", "A101"),
		examRoom("r2", "2025-06-02", "14:00", "16:00", "A101"),
		examRoom("r3", "2025-06-02", "08:00", "10:00", "A101"),
	}

	sessions, err := GroupSessions(rooms, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2025-06-02", sessions[0].Key.Date)
	assert.Equal(t, "08:00", sessions[0].Key.StartTime)
	assert.Equal(t, "14:00", sessions[1].Key.StartTime)
	assert.Equal(t, "2025-06-03", sessions[2].Key.Date)
}

func TestGroupSessionsSeparatesDatasets(t *testing.T) {
	makeup := examRoom("r2", "2025-06-02", "08:00", "10:00", "A101")
	makeup.SessionType = models.SessionMakeup
	rooms := []models.ExamRoom{
		examRoom("r1", "2025-06-02", "08:00", "10:00", "A101"),
		makeup,
	}

	sessions, err := GroupSessions(rooms, 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestGroupSessionsRejectsMalformedRows(t *testing.T) {
	_, err := GroupSessions([]models.ExamRoom{examRoom("r1", "02/06/2025", "08:00", "10:00", "A101")}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r1")

	_, err = GroupSessions([]models.ExamRoom{examRoom("r1", "2025-06-02", "10:00", "08:00", "A101")}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ends before it starts")
}
