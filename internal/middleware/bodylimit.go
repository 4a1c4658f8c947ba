package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodySize rejects requests that declare a larger body than maxBytes and
// caps the rest while they are read.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			respondError(c, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
