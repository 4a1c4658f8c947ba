package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"

	// ClientRequestIDKey holds the caller's own X-Request-ID, if any.
	ClientRequestIDKey = "client_request_id"
)

// maxClientRequestID bounds how much of a caller-supplied ID is kept.
const maxClientRequestID = 128

// RequestID assigns every request a fresh server-side UUID. A caller's
// X-Request-ID is kept separately for correlation and never replaces it.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			if len(clientID) > maxClientRequestID {
				clientID = clientID[:maxClientRequestID]
			}
			log.WithFields(logrus.Fields{
				"request_id":        id,
				"client_request_id": clientID,
			}).Debug("client request id mapped to server id")
			c.Set(ClientRequestIDKey, clientID)
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
