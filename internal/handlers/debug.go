package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storechat/internal/telemetry"
)

// RegisterDebugRoutes wires endpoints that only exist on a dev backend with
// DEBUG_ROUTES enabled. /debug/audit-ping pushes a synthetic audit record
// through the broker so operators can verify the AMQP path end to end.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-ping", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}

		level := strings.ToUpper(c.DefaultQuery("level", "INFO"))
		emitter.Emit(c.Request.Context(), level, "storefront audit ping",
			requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"published": true, "level": level})
	})
}
