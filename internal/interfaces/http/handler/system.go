package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/brightcart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReadinessCheck probes one downstream dependency for the readiness
// endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	version   string
	checks    []ReadinessCheck
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string, checks ...ReadinessCheck) *SystemHandler {
	if version == "" {
		version = "dev"
	}
	return &SystemHandler{
		startTime: time.Now(),
		version:   version,
		checks:    checks,
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"BrightCart Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "BrightCart Backend API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// HealthResponse represents the liveness probe response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Health godoc
// @ID           getHealth
// @Summary      Liveness probe
// @Description  Reports that the process is up. Does not touch any dependency.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessResponse represents the readiness probe response
// @name HandlerReadinessResponse
type ReadinessResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

// Ready godoc
// @ID           getHealthReady
// @Summary      Readiness probe
// @Description  Probes each registered dependency and reports 503 when any is down
// @Tags         system
// @Produce      json
// @Success      200 {object} ReadinessResponse
// @Failure      503 {object} ReadinessResponse
// @Router       /health/ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := ReadinessResponse{
		Status: "ready",
		Checks: make(map[string]string, len(h.checks)),
	}

	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	c.JSON(status, resp)
}

// VersionResponse represents the version endpoint response
// @name HandlerVersionResponse
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Version godoc
// @ID           getVersion
// @Summary      Get the server version
// @Tags         system
// @Produce      json
// @Success      200 {object} VersionResponse
// @Router       /version [get]
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{Version: h.version})
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
