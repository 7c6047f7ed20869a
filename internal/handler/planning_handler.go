package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/service"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
	"github.com/examena/surveillance-api/pkg/response"
)

// PlanningHandler exposes roster generation endpoints.
type PlanningHandler struct {
	planning *service.PlanningService
}

// NewPlanningHandler constructs handler.
func NewPlanningHandler(planning *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{planning: planning}
}

// Solve godoc
// @Summary Generate a duty roster
// @Tags Planning
// @Accept json
// @Produce json
// @Param payload body dto.SolveRequest true "Solve parameters"
// @Success 200 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /planning/solve [post]
func (h *PlanningHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid solve payload"))
		return
	}
	result, err := h.planning.Solve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reset godoc
// @Summary Clear every assignment of a dataset
// @Tags Planning
// @Accept json
// @Produce json
// @Param payload body dto.ResetRequest true "Dataset scope"
// @Success 200 {object} response.Envelope
// @Router /planning/reset [post]
func (h *PlanningHandler) Reset(c *gin.Context) {
	var req dto.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reset payload"))
		return
	}
	result, err := h.planning.Reset(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
