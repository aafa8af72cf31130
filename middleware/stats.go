package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageforge/backend/logging"
)

// StatsMiddleware tracks visitors and per-operation request statistics
func StatsMiddleware(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Track unique visitor by client IP
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		// Only track engine operations, not health or statistics reads
		if c.Request.Method != "POST" || !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			return
		}
		operation := strings.TrimPrefix(c.Request.URL.Path, "/api/")

		handleTime := float64(time.Since(start).Milliseconds())
		stats.TrackRequest(operation, int(c.Request.ContentLength), handleTime, c.Writer.Status() >= 400)

		// Periodically save statistics asynchronously
		if stats.GetTotalRequests()%100 == 0 {
			go stats.Save()
		}
	}
}
