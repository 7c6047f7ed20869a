package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examena/surveillance-api/internal/models"
	"github.com/examena/surveillance-api/internal/service"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
	"github.com/examena/surveillance-api/pkg/response"
)

// ExportHandler streams rendered roster documents.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func (h *ExportHandler) stream(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// TeacherRoster godoc
// @Summary Download one teacher's duty roster
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param id path string true "Teacher ID"
// @Param semester query string true "Semester"
// @Param session_type query string true "Session type"
// @Param format query string false "csv or pdf" default(pdf)
// @Success 200 {file} binary
// @Router /exports/teachers/{id} [get]
func (h *ExportHandler) TeacherRoster(c *gin.Context) {
	q, ok := rosterQuery(c)
	if !ok {
		return
	}
	result, err := h.exports.TeacherRoster(c.Request.Context(), c.Param("id"), q, c.DefaultQuery("format", service.FormatPDF))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, result)
}

// SessionRoster godoc
// @Summary Download the supervisor sheet of one session
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param semester query string true "Semester"
// @Param session_type query string true "Session type"
// @Param date query string true "Exam date (YYYY-MM-DD)"
// @Param start_time query string true "Start time (HH:MM)"
// @Param format query string false "csv or pdf" default(pdf)
// @Success 200 {file} binary
// @Router /exports/session [get]
func (h *ExportHandler) SessionRoster(c *gin.Context) {
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
	key := models.SessionKey{Date: date, StartTime: start, SessionType: q.SessionType, Semester: q.Semester}
	result, err := h.exports.SessionRoster(c.Request.Context(), key, c.DefaultQuery("format", service.FormatPDF))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, result)
}

// Workload godoc
// @Summary Download the per-teacher workload report
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param semester query string true "Semester"
// @Param session_type query string true "Session type"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exports/workload [get]
func (h *ExportHandler) Workload(c *gin.Context) {
	q, ok := rosterQuery(c)
	if !ok {
		return
	}
	result, err := h.exports.Workload(c.Request.Context(), q, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, result)
}
