package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestGuard(t *testing.T) *middleware.BruteForceGuard {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return middleware.NewBruteForceGuard(ctx, quietLogger())
}

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

// serve sends one request from remoteIP with the given headers.
func serve(r http.Handler, method, path, remoteIP string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, http.NoBody)
	if remoteIP != "" {
		req.RemoteAddr = remoteIP + ":1234"
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}
