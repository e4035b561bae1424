package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/homeops/backend/internal/interfaces/http/dto"
)

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	db        *gorm.DB
	appName   string
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *gorm.DB, appName, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		appName:   appName,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health handles GET /health. It reports liveness only and never
// touches dependencies.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// Ready handles GET /ready. It verifies the database connection and
// returns 503 when it is unreachable.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("ERR_NOT_READY", "Database is unreachable"))
			return
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      h.appName,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}
