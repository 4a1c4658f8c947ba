package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/searchcraftinc/searchcraft-connect/internal/middleware"
)

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/test", okHandler)

	w := serve(r, http.MethodGet, "/test", "", nil)

	expected := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
		"Cache-Control":           "no-store",
	}
	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS over plain HTTP = %q, want empty", got)
	}
}

func TestSecurityHeaders_HSTSOverTLS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/test", okHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("expected HSTS header over TLS")
	}
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.Use(middleware.MaxBodySize(8))
	r.POST("/test", okHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("0123456789"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got %d, want 413", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	var clientID string
	r := gin.New()
	r.Use(middleware.RequestID(quietLogger()))
	r.GET("/test", func(c *gin.Context) {
		clientID = c.GetString(middleware.ClientRequestIDKey)
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/test", "", map[string]string{middleware.RequestIDHeader: "caller-123"})

	id := w.Header().Get(middleware.RequestIDHeader)
	if id == "" || id == "caller-123" {
		t.Fatalf("request id = %q, want a fresh server id", id)
	}
	if clientID != "caller-123" {
		t.Errorf("client request id = %q", clientID)
	}
}
