package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/service"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
	"github.com/examena/surveillance-api/pkg/response"
)

// EditHandler exposes manual roster correction endpoints.
type EditHandler struct {
	edits *service.EditService
}

// NewEditHandler constructs handler.
func NewEditHandler(edits *service.EditService) *EditHandler {
	return &EditHandler{edits: edits}
}

// Add godoc
// @Summary Assign a teacher to an exam session
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.EditRequest true "Assignment target"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /assignments [post]
func (h *EditHandler) Add(c *gin.Context) {
	var req dto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload"))
		return
	}
	result, err := h.edits.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Remove godoc
// @Summary Unassign a teacher from an exam session
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.EditRequest true "Assignment target"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /assignments [delete]
func (h *EditHandler) Remove(c *gin.Context) {
	var req dto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload"))
		return
	}
	result, err := h.edits.Remove(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
