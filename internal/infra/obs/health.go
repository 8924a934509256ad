package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carrental/internal/app/dto"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// HealthHandlers exposes endpoints for liveness and readiness checks.
type HealthHandlers struct {
	Checks map[string]Check
	Now    func() time.Time
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	failed := gin.H{}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "errors": failed})
		return
	}
	c.Status(http.StatusOK)
}

// Health answers the public health check of the API.
func (h HealthHandlers) Health(c *gin.Context) {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	c.JSON(http.StatusOK, dto.Health{Status: "healthy", Timestamp: now.UTC()})
}
