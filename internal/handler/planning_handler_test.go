package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examena/surveillance-api/internal/service"
	"github.com/examena/surveillance-api/pkg/config"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

func newPlanningHandlerFixture() *PlanningHandler {
	cfg := config.SolverConfig{DefaultPolicy: "weighted", MinPerRoom: 2, Workers: 1, PreferenceWeight: 1}
	svc := service.NewPlanningService(nil, nil, nil, nil, nil, nil, nil, nil, cfg, nil)
	return NewPlanningHandler(svc)
}

func postJSON(c *gin.Context, path, body string) {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func TestPlanningHandlerSolveInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlanningHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/planning/solve", `{"semester":"S1"`)

	handler.Solve(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid solve payload", env.Error.Message)
}

func TestPlanningHandlerSolveRejectsUnknownDataset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlanningHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/planning/solve", `{"semester":"S1","session_type":"retake"}`)

	handler.Solve(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestPlanningHandlerResetInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlanningHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/planning/reset", `[]`)

	handler.Reset(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
