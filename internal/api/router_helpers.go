package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/middleware"
)

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if cid := c.GetString(middleware.ClientRequestIDKey); cid != "" {
			fields["client_request_id"] = cid
		}
		if c.GetString(middleware.AdminSubjectKey) != "" {
			fields["admin"] = true
		}
		log.WithFields(fields).Info("request")
	}
}

// adminSubject returns the nonce subject set by the admin auth middleware.
func adminSubject(c *gin.Context) string {
	return c.GetString(middleware.AdminSubjectKey)
}
