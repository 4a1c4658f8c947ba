package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/nonce"
)

// NonceHeader carries the nonce on state-changing admin requests.
const NonceHeader = "X-Searchcraft-Nonce"

// NonceConsumer verifies and spends a nonce.
type NonceConsumer interface {
	Consume(ctx context.Context, action, subject, token string) (int, error)
}

// RequireNonce rejects requests whose nonce is missing, invalid for action or
// already used. It must run after AdminAuth.
func RequireNonce(nonces NonceConsumer, action string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(NonceHeader)
		if token == "" {
			respondError(c, http.StatusForbidden, "invalid_nonce", "missing nonce")
			return
		}

		result, err := nonces.Consume(c.Request.Context(), action, c.GetString(AdminSubjectKey), token)
		switch {
		case errors.Is(err, nonce.ErrReplayed):
			respondError(c, http.StatusForbidden, "invalid_nonce", "nonce already used")
			return
		case err != nil:
			log.WithError(err).WithField("action", action).Error("nonce check failed")
			respondError(c, http.StatusServiceUnavailable, "internal_error", "nonce check unavailable")
			return
		case result == nonce.Invalid:
			respondError(c, http.StatusForbidden, "invalid_nonce", "the link you followed has expired")
			return
		}

		c.Next()
	}
}
