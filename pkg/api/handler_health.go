package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kientrucanlac/anlac/pkg/version"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
)

// healthHandler handles GET /health. Only this server's own dependencies are
// checked; the backend API is left out so its outages do not restart us.
func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := healthStatusHealthy
	checks := map[string]HealthCheck{
		"sessions": {Status: healthStatusHealthy, Message: strconv.Itoa(s.sessions.Count()) + " active"},
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			status = healthStatusUnhealthy
			checks["redis"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
		} else {
			checks["redis"] = HealthCheck{Status: healthStatusHealthy}
		}
	}

	httpStatus := http.StatusOK
	if status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, HealthResponse{
		Status:  status,
		Version: version.Full(),
		Checks:  checks,
	})
}
