package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	"github.com/examena/surveillance-api/internal/service"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
	"github.com/examena/surveillance-api/pkg/response"
)

// RosterHandler exposes the read side of the roster.
type RosterHandler struct {
	rosters *service.RosterService
}

// NewRosterHandler constructs handler.
func NewRosterHandler(rosters *service.RosterService) *RosterHandler {
	return &RosterHandler{rosters: rosters}
}

func rosterQuery(c *gin.Context) (dto.RosterQuery, bool) {
	q := dto.RosterQuery{
		Semester:    c.Query("semester"),
		SessionType: c.Query("session_type"),
	}
	if q.Semester == "" || q.SessionType == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester and session_type are required"))
		return q, false
	}
	return q, true
}

// TeacherRoster godoc
// @Summary Duty roster of one teacher
// @Tags Rosters
// @Produce json
// @Param id path string true "Teacher ID"
// @Param semester query string true "Semester"
// @Param session_type query string true "Session type"
// @Success 200 {object} response.Envelope
// @Router /rosters/teachers/{id} [get]
func (h *RosterHandler) TeacherRoster(c *gin.Context) {
	q, ok := rosterQuery(c)
	if !ok {
		return
	}
	roster, cached, err := h.rosters.TeacherRoster(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil, map[string]interface{}{"cached": cached})
}

// SessionRoster godoc
// @Summary Supervisors of one exam session
// @Tags Rosters
// @Produce json
// @Param semester query string true "Semester"
// @Param session_type query string true "Session type"
// @Param date query string true "Exam date (YYYY-MM-DD)"
// @Param start_time query string true "Start time (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /rosters/session [get]
func (h *RosterHandler) SessionRoster(c *gin.Context) {
	q, ok := rosterQuery(c)
	if !ok {
		return
	}
	date := c.Query("date")
	start := c.Query("start_time")
	if date == "" || start == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date and start_time are required"))
		return
	}
	key := models.SessionKey{
		Date:        date,
		StartTime:   start,
		SessionType: q.SessionType,
		Semester:    q.Semester,
	}
	roster, cached, err := h.rosters.SessionRoster(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil, map[string]interface{}{"cached": cached})
}

// Sessions godoc
// @Summary Sessions of a dataset with coverage counts
// @Tags Rosters
// @Produce json
// @Param semester query string true "Semester"
// @Param session_type query string true "Session type"
// @Success 200 {object} response.Envelope
// @Router /rosters/sessions [get]
func (h *RosterHandler) Sessions(c *gin.Context) {
	q, ok := rosterQuery(c)
	if !ok {
		return
	}
	sessions, cached, err := h.rosters.Sessions(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil, map[string]interface{}{"cached": cached})
}

// Workload godoc
// @Summary Per-teacher duty counts against grade quotas
// @Tags Rosters
// @Produce json
// @Param semester query string true "Semester"
// @Param session_type query string true "Session type"
// @Success 200 {object} response.Envelope
// @Router /rosters/workload [get]
func (h *RosterHandler) Workload(c *gin.Context) {
	q, ok := rosterQuery(c)
	if !ok {
		return
	}
	rows, cached, err := h.rosters.Workload(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"cached": cached})
}
