package solver

import (
	"fmt"
	"sort"
	"time"

	"github.com/examena/surveillance-api/internal/models"
)

// Policy selects one of the three interchangeable solver strategies.
type Policy string

const (
	// PolicyEqualQuota assigns every teacher of a grade exactly the grade's
	// nominal surveillance count, maximizing preference satisfaction.
	PolicyEqualQuota Policy = "equal_quota"
	// PolicyWeighted trades off coverage, preferences, grade balance and
	// relaxation count; its quota is a soft ceiling. This is the default.
	PolicyWeighted Policy = "weighted"
	// PolicyStrictMax treats the grade quota as an inviolable upper bound and
	// accepts partial coverage rather than exceed it.
	PolicyStrictMax Policy = "strict_max_quota"
)

// ParsePolicy validates a wire policy string.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case PolicyEqualQuota, PolicyWeighted, PolicyStrictMax:
		return Policy(raw), nil
	case "":
		return PolicyWeighted, nil
	default:
		return "", fmt.Errorf("unknown policy %q", raw)
	}
}

// Options carries the solve parameters shared by every policy.
type Options struct {
	MinPerRoom       int
	AllowSingle      bool
	TimeBudget       time.Duration
	RelativeGapLimit float64
	PreferenceWeight float64
	Workers          int
	Seed             int64
}

func (o *Options) normalize() {
	if o.MinPerRoom < 1 {
		o.MinPerRoom = 2
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = time.Minute
	}
	if o.RelativeGapLimit < 0 {
		o.RelativeGapLimit = 0
	}
	if o.RelativeGapLimit > 1 {
		o.RelativeGapLimit = 1
	}
	if o.PreferenceWeight <= 0 {
		o.PreferenceWeight = 1
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
}

// TeacherVar is one decision-variable owner: a participating teacher with its
// grade-derived quota bounds and preferred session set.
type TeacherVar struct {
	ID        string
	Name      string
	GradeCode string
	GradeRank int
	QuotaMax  int
	QuotaMin  int

	prefSessions map[int]struct{}
	hasPrefs     bool
}

// Prefers reports whether the teacher stated a preference covering session s.
func (t *TeacherVar) Prefers(s int) bool {
	_, ok := t.prefSessions[s]
	return ok
}

// HasPreferences reports whether the teacher stated any preference at all.
// Teachers without preferences are never counted as violated.
func (t *TeacherVar) HasPreferences() bool {
	return t.hasPrefs
}

// roomNeed is one room of a session with its supervisor demand.
type roomNeed struct {
	Code string
	Need int
}

// sessionVar is a surveillance session prepared for search: parsed times and
// per-room demand.
type sessionVar struct {
	Key      models.SessionKey
	Rooms    []roomNeed
	Required int
	startMin int
	endMin   int
}

// Model is the policy-agnostic constraint set: sessions with coverage lower
// bounds, teachers with quota bounds, the overlap graph, and preference
// rewards. The three strategies differ only in objective shape and in how
// strictly they read QuotaMax.
type Model struct {
	Teachers []TeacherVar
	Opts     Options

	sessions      []sessionVar
	overlaps      [][]int
	totalRequired int
	totalRooms    int
	excluded      int
}

// Sessions exposes the ordered session keys of the model.
func (m *Model) Sessions() []models.SessionKey {
	keys := make([]models.SessionKey, len(m.sessions))
	for i, s := range m.sessions {
		keys[i] = s.Key
	}
	return keys
}

// RequiredSlots is the total supervisor demand across all rooms.
func (m *Model) RequiredSlots() int { return m.totalRequired }

// TotalRooms is the room count across all sessions.
func (m *Model) TotalRooms() int { return m.totalRooms }

// Build assembles the constraint model for any policy. Teachers that opted
// out of surveillance contribute no decision variables; teachers referencing
// an unknown grade or sessions with malformed timestamps abort the build.
func Build(
	teachers []models.Teacher,
	grades map[string]models.Grade,
	sessions []models.SurveillanceSession,
	prefs []models.Preference,
	opts Options,
) (*Model, error) {
	opts.normalize()

	m := &Model{Opts: opts}

	m.sessions = make([]sessionVar, 0, len(sessions))
	for _, s := range sessions {
		start, err := models.ParseClock(s.Key.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := models.ParseClock(s.Key.EndTime)
		if err != nil {
			return nil, err
		}
		if _, err := models.ParseDate(s.Key.Date); err != nil {
			return nil, err
		}
		if end <= start {
			return nil, fmt.Errorf("session %s ends before it starts", s.Key)
		}
		sv := sessionVar{Key: s.Key, startMin: start, endMin: end}
		for _, room := range s.Rooms {
			sv.Rooms = append(sv.Rooms, roomNeed{Code: room.RoomCode, Need: opts.MinPerRoom})
			sv.Required += opts.MinPerRoom
			m.totalRooms++
		}
		m.totalRequired += sv.Required
		m.sessions = append(m.sessions, sv)
	}
	sort.Slice(m.sessions, func(i, j int) bool {
		a, b := m.sessions[i], m.sessions[j]
		if a.Key.Date != b.Key.Date {
			return a.Key.Date < b.Key.Date
		}
		if a.startMin != b.startMin {
			return a.startMin < b.startMin
		}
		return a.Key.String() < b.Key.String()
	})

	m.overlaps = make([][]int, len(m.sessions))
	for i := range m.sessions {
		for j := i + 1; j < len(m.sessions); j++ {
			a, b := &m.sessions[i], &m.sessions[j]
			if a.Key.Date != b.Key.Date {
				continue
			}
			if models.RangesOverlap(a.startMin, a.endMin, b.startMin, b.endMin) {
				m.overlaps[i] = append(m.overlaps[i], j)
				m.overlaps[j] = append(m.overlaps[j], i)
			}
		}
	}

	prefsByTeacher := make(map[string][]models.Preference)
	for _, p := range prefs {
		prefsByTeacher[p.TeacherID] = append(prefsByTeacher[p.TeacherID], p)
	}

	for _, t := range teachers {
		if !t.Participates {
			m.excluded++
			continue
		}
		grade, ok := grades[t.GradeCode]
		if !ok {
			return nil, fmt.Errorf("teacher %s references unknown grade %q", t.ID, t.GradeCode)
		}
		tv := TeacherVar{
			ID:           t.ID,
			Name:         t.FullName,
			GradeCode:    grade.Code,
			GradeRank:    grade.Rank,
			QuotaMax:     grade.MaxSurveillances,
			QuotaMin:     grade.MinSurveillances,
			prefSessions: make(map[int]struct{}),
		}
		for _, p := range prefsByTeacher[t.ID] {
			tv.hasPrefs = true
			for si := range m.sessions {
				if p.Matches(m.sessions[si].Key) {
					tv.prefSessions[si] = struct{}{}
				}
			}
		}
		m.Teachers = append(m.Teachers, tv)
	}
	sort.Slice(m.Teachers, func(i, j int) bool { return m.Teachers[i].ID < m.Teachers[j].ID })

	return m, nil
}
