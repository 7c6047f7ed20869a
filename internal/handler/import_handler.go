package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examena/surveillance-api/internal/service"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
	"github.com/examena/surveillance-api/pkg/response"
)

// ImportHandler exposes spreadsheet ingestion endpoints.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler constructs handler.
func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

func openUpload(c *gin.Context) (multipart.File, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart field \"file\" is required"))
		return nil, false
	}
	reader, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "cannot open upload"))
		return nil, false
	}
	return reader, true
}

// Teachers godoc
// @Summary Import the teacher directory workbook
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook (xlsx)"
// @Success 200 {object} response.Envelope
// @Router /imports/teachers [post]
func (h *ImportHandler) Teachers(c *gin.Context) {
	reader, ok := openUpload(c)
	if !ok {
		return
	}
	defer reader.Close()

	summary, err := h.imports.ImportTeachers(c.Request.Context(), reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Grades godoc
// @Summary Import the grade quota workbook
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook (xlsx)"
// @Success 200 {object} response.Envelope
// @Router /imports/grades [post]
func (h *ImportHandler) Grades(c *gin.Context) {
	reader, ok := openUpload(c)
	if !ok {
		return
	}
	defer reader.Close()

	summary, err := h.imports.ImportGrades(c.Request.Context(), reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExamCalendar godoc
// @Summary Import the exam calendar workbook for one dataset
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param semester formData string true "Semester"
// @Param session_type formData string true "Session type"
// @Param file formData file true "Workbook (xlsx)"
// @Success 200 {object} response.Envelope
// @Router /imports/exams [post]
func (h *ImportHandler) ExamCalendar(c *gin.Context) {
	reader, ok := openUpload(c)
	if !ok {
		return
	}
	defer reader.Close()

	summary, err := h.imports.ImportExamCalendar(c.Request.Context(), c.PostForm("semester"), c.PostForm("session_type"), reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Preferences godoc
// @Summary Import the preference workbook for one dataset
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param semester formData string true "Semester"
// @Param session_type formData string true "Session type"
// @Param file formData file true "Workbook (xlsx)"
// @Success 200 {object} response.Envelope
// @Router /imports/preferences [post]
func (h *ImportHandler) Preferences(c *gin.Context) {
	reader, ok := openUpload(c)
	if !ok {
		return
	}
	defer reader.Close()

	summary, err := h.imports.ImportPreferences(c.Request.Context(), c.PostForm("semester"), c.PostForm("session_type"), reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
