package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Version is the reported service version.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// A service with no configured backend reports "degraded": it is up, but
// every scrape request will fail.
func Health(svc Service, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		backends := svc.Kinds()

		status := "healthy"
		if len(backends) == 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:   status,
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Backends: backends,
			Version:  Version,
		})
	}
}
