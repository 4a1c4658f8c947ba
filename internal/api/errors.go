package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/client"
	"github.com/searchcraftinc/searchcraft-connect/internal/httputil"
	"github.com/searchcraftinc/searchcraft-connect/internal/metrics"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeNotFound            = "not_found"
	ErrCodeInternalError       = "internal_error"
	ErrCodeRateLimited         = "rate_limited"
	ErrCodeValidationError     = "validation_error"
	ErrCodeNotConfigured       = "not_configured"
	ErrCodeQueueFull           = "queue_full"
	ErrCodeUpstreamError       = "upstream_error"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondClientError maps a Searchcraft client failure to a response.
func respondClientError(c *gin.Context, log *logrus.Logger, op string, err error) {
	e, ok := client.AsError(err)
	if !ok {
		log.WithError(err).WithField("op", op).Error("searchcraft request failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}

	log.WithError(err).WithFields(logrus.Fields{
		"op":     op,
		"kind":   e.Kind.String(),
		"code":   e.Code,
		"status": e.Status,
	}).Warn("searchcraft request failed")

	switch {
	case e.Kind == client.KindPrecondition:
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, e.Message)
	case e.Kind == client.KindTransport || e.Kind == client.KindMalformedResponse:
		respondError(c, http.StatusBadGateway, ErrCodeUpstreamUnavailable, "searchcraft is unreachable")
	case e.Status == http.StatusNotFound:
		respondError(c, http.StatusNotFound, ErrCodeNotFound, e.Message)
	case e.Status == http.StatusTooManyRequests:
		respondError(c, http.StatusTooManyRequests, ErrCodeRateLimited, e.Message)
	default:
		respondError(c, http.StatusBadGateway, ErrCodeUpstreamError, e.Message)
	}
}
