package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightcart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("1.0.0")
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.0.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "BrightCart Backend API", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_GetSystemInfo_DefaultVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"dev"`)
}

func TestSystemHandler_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.0.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/ping", nil)

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestSystemHandler_Version(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("2.3.1")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/version", nil)

	h.Version(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp VersionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2.3.1", resp.Version)
}

func TestSystemHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.0.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)

	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSystemHandler_Ready_AllChecksPass(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.0.0",
		ReadinessCheck{Name: "database", Check: func(ctx context.Context) error { return nil }},
		ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error { return nil }},
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/health/ready", nil)

	h.Ready(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "ok", resp.Checks["redis"])
}

func TestSystemHandler_Ready_FailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.0.0",
		ReadinessCheck{Name: "database", Check: func(ctx context.Context) error { return nil }},
		ReadinessCheck{Name: "provider", Check: func(ctx context.Context) error {
			return errors.New("connection refused")
		}},
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/health/ready", nil)

	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "connection refused", resp.Checks["provider"])
}

func TestSystemHandler_Ready_NoChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.0.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/health/ready", nil)

	h.Ready(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
