package handler

import (
	"net/http"

	"github.com/agrodist/agrodist/internal/health"
	"github.com/gin-gonic/gin"
)

// Readiness serves the checker's last probe results. It answers 503 while
// any probe is degraded.
func Readiness(checker *health.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		probes, ready := checker.Snapshot()
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "probes": probes})
	}
}
