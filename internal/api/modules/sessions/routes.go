package sessions

import (
	"github.com/gin-gonic/gin"
)

// Register routes for the sessions module
func RegisterRoutes(g *gin.RouterGroup) {
	// Create base group for session report routes
	group := g.Group("/sessions")

	// Month report routes
	group.GET("", GetSessions)                // Aggregated month as JSON
	group.GET("/stream", StreamSessions)      // Fetch progress as SSE
	group.GET("/export", ExportSessions)      // Month report as CSV download
	group.GET("/export/stream", StreamExport) // Fetch + format progress as SSE
}
