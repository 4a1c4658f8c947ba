// Package api provides the connector's HTTP handlers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	settings   domain.SettingsService
	readClient domain.ClientFactory
	log        *logrus.Logger
	version    string
	startTime  time.Time
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
func NewHealthHandler(s domain.SettingsService, readClient domain.ClientFactory, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		settings:   s,
		readClient: readClient,
		log:        log,
		version:    version,
		startTime:  time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Storage       string  `json:"storage"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Storage:       "connected",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	// Best-effort storage ping (non-fatal for liveness).
	if h.settings == nil {
		resp.Storage = "not_configured"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.settings.Ping(ctx); err != nil {
			resp.Storage = "disconnected"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready. The option store must answer; the
// Searchcraft cluster is checked only once the connector is configured.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"storage":     "ok",
		"searchcraft": "ok",
	}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.settings.Ping(ctx); err != nil {
		h.log.WithError(err).Error("readiness: option store ping failed")
		checks["storage"] = "error"
		checks["searchcraft"] = "unknown"
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready", Checks: checks})
		return
	}

	opts, err := h.settings.Load(ctx)
	switch {
	case err != nil:
		h.log.WithError(err).Error("readiness: loading settings failed")
		checks["storage"] = "error"
		checks["searchcraft"] = "unknown"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	case !opts.Configured():
		checks["searchcraft"] = "not_configured"
	default:
		if err := h.checkSearchcraft(ctx, opts); err != nil {
			h.log.WithError(err).Warn("readiness: searchcraft healthcheck failed")
			checks["searchcraft"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}

func (h *HealthHandler) checkSearchcraft(ctx context.Context, opts settings.Options) error {
	sc, err := h.readClient(opts)
	if err != nil {
		return err
	}
	_, err = sc.Healthcheck().Check(ctx)
	return err
}
