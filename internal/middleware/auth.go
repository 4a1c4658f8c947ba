package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// authTimingFloor is the minimum response time for rejected admin requests.
const authTimingFloor = 50 * time.Millisecond

// AdminSubjectKey is the gin context key holding the authenticated admin's
// nonce subject.
const AdminSubjectKey = "admin_subject"

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return key
}

// hashKey returns a hex-encoded SHA-256 of key so raw tokens are never kept
// or compared directly.
func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AdminAuth returns Gin middleware that admits requests carrying the admin
// token as a Bearer credential. Failed attempts are recorded per client IP
// when a guard is given.
func AdminAuth(token string, log *logrus.Logger, guard *BruteForceGuard) gin.HandlerFunc {
	want := sha256.Sum256([]byte(token))
	subject := "admin:" + hashKey(token)[:16]

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		presented := ExtractBearerToken(c)
		if presented == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		got := sha256.Sum256([]byte(presented))
		if token == "" || subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
			logAuthFailure(log, c, presented)
			if guard != nil {
				guard.RecordFailure(c.ClientIP())
			}
			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid admin token")
			return
		}

		if guard != nil {
			guard.Reset(c.ClientIP())
		}

		c.Set(AdminSubjectKey, subject)
		c.Next()
	}
}

// ExtractBearerToken extracts the token from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func logAuthFailure(log *logrus.Logger, c *gin.Context, token string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString(RequestIDKey),
		"key_prefix": truncateKey(token),
	}).Warn("authentication failed: invalid admin token")
}
