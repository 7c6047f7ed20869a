package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	"github.com/examena/surveillance-api/internal/service"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
	"github.com/examena/surveillance-api/pkg/response"
)

// TeacherHandler exposes the teacher directory.
type TeacherHandler struct {
	teachers *service.TeacherService
}

// NewTeacherHandler constructs handler.
func NewTeacherHandler(teachers *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param search query string false "Name or code fragment"
// @Param grade_code query string false "Grade filter"
// @Param participates query bool false "Participation filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	filter := models.TeacherFilter{
		Search:    c.Query("search"),
		GradeCode: c.Query("grade_code"),
	}
	if raw := c.Query("participates"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "participates must be a boolean"))
			return
		}
		filter.Participates = &parsed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	teachers, pagination, err := h.teachers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// Get godoc
// @Summary Fetch one teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Grades godoc
// @Summary List grade quota definitions
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *TeacherHandler) Grades(c *gin.Context) {
	grades, err := h.teachers.Grades(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

type participationRequest struct {
	Participates *bool `json:"participates" binding:"required"`
}

// SetParticipation godoc
// @Summary Toggle surveillance participation
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body participationRequest true "Participation flag"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/participation [patch]
func (h *TeacherHandler) SetParticipation(c *gin.Context) {
	var req participationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Participates == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "participates flag required"))
		return
	}
	teacher, err := h.teachers.SetParticipation(c.Request.Context(), c.Param("id"), *req.Participates)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Preferences godoc
// @Summary List one teacher's preferences
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/preferences [get]
func (h *TeacherHandler) Preferences(c *gin.Context) {
	prefs, err := h.teachers.Preferences(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// ReplacePreferences godoc
// @Summary Replace one teacher's preferences
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.ReplacePreferencesRequest true "Preference set"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/preferences [put]
func (h *TeacherHandler) ReplacePreferences(c *gin.Context) {
	var req dto.ReplacePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid preference payload"))
		return
	}
	prefs, err := h.teachers.ReplacePreferences(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}
