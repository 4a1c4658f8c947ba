package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
)

// StatsHandler reports on the configured index.
type StatsHandler struct {
	settings   domain.SettingsLoader
	readClient domain.ClientFactory
	log        *logrus.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(s domain.SettingsLoader, readClient domain.ClientFactory, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{settings: s, readClient: readClient, log: log}
}

// IndexStats handles GET /admin/index/stats by relaying the Searchcraft
// index stats response.
func (h *StatsHandler) IndexStats(c *gin.Context) {
	ctx := c.Request.Context()

	opts, err := h.settings.Load(ctx)
	if err != nil {
		h.log.WithError(err).Error("loading settings for stats")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}
	if !opts.Configured() {
		respondError(c, http.StatusConflict, ErrCodeNotConfigured, "endpoint, index and read key must be configured")
		return
	}

	sc, err := h.readClient(opts)
	if err != nil {
		respondClientError(c, h.log, "build client", err)
		return
	}

	resp, err := sc.Index().Stats(ctx, opts.IndexID)
	if err != nil {
		respondClientError(c, h.log, "index stats", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
