package service

import (
	"fmt"
	"sort"

	"github.com/examena/surveillance-api/internal/models"
)

// GroupSessions derives surveillance sessions from flat exam room rows: rows
// sharing (date, start, end, session type, semester) become one session
// owning those rooms. Pure and deterministic; the only failure mode is a
// malformed timestamp in the input.
func GroupSessions(rooms []models.ExamRoom, minPerRoom int) ([]models.SurveillanceSession, error) {
	if minPerRoom < 1 {
		minPerRoom = 1
	}

	byKey := make(map[models.SessionKey][]models.ExamRoom)
	for _, room := range rooms {
		if _, err := models.ParseDate(room.Date); err != nil {
			return nil, fmt.Errorf("exam room %s: %w", room.ID, err)
		}
		start, err := models.ParseClock(room.StartTime)
		if err != nil {
			return nil, fmt.Errorf("exam room %s: %w", room.ID, err)
		}
		end, err := models.ParseClock(room.EndTime)
		if err != nil {
			return nil, fmt.Errorf("exam room %s: %w", room.ID, err)
		}
		if end <= start {
			return nil, fmt.Errorf("exam room %s: slot %s-%s ends before it starts", room.ID, room.StartTime, room.EndTime)
		}
		key := models.SessionKey{
			Date:        room.Date,
			StartTime:   room.StartTime,
			EndTime:     room.EndTime,
			SessionType: room.SessionType,
			Semester:    room.Semester,
		}
		byKey[key] = append(byKey[key], room)
	}

	sessions := make([]models.SurveillanceSession, 0, len(byKey))
	for key, grouped := range byKey {
		sort.Slice(grouped, func(i, j int) bool { return grouped[i].RoomCode < grouped[j].RoomCode })
		sessions = append(sessions, models.SurveillanceSession{
			Key:      key,
			Rooms:    grouped,
			Required: minPerRoom * len(grouped),
		})
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i].Key, sessions[j].Key
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.String() < b.String()
	})

	return sessions, nil
}
