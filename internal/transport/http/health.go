package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patil-aryan/lumos/internal/core"
)

// HealthChecker reports per-dependency liveness.
type HealthChecker interface {
	CheckDatabase(ctx context.Context) error
	CheckGraph(ctx context.Context) error
}

// healthCheck handles GET /health. A degraded dependency turns the
// overall status degraded but still returns 200; orchestration decides
// what to do with it.
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	status := "healthy"

	if err := s.health.CheckDatabase(ctx); err != nil {
		checks["database"] = gin.H{"status": "unhealthy", "error": err.Error()}
		status = "degraded"
	} else {
		checks["database"] = gin.H{"status": "healthy"}
	}

	if err := s.health.CheckGraph(ctx); err != nil {
		checks["graph"] = gin.H{"status": "unhealthy", "error": err.Error()}
		status = "degraded"
	} else {
		checks["graph"] = gin.H{"status": "healthy"}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"service":   core.LumosName,
		"version":   core.LumosVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
