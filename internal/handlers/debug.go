package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afribase-messaging/internal/telemetry"
)

// RegisterDebugRoutes mounts non-production helpers. Only wired when
// DEBUG_ROUTES is enabled.
func RegisterDebugRoutes(rg *gin.RouterGroup, audit *telemetry.AuditEmitter) {
	rg.POST("/debug/audit-test", func(c *gin.Context) {
		audit.Emit(c.Request.Context(), "INFO", "audit pipeline test event",
			requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "emitted"})
	})
}
