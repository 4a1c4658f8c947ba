package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
	"github.com/searchcraftinc/searchcraft-connect/internal/frontend"
)

// EmbedHandler serves the search UI fragment the site injects into its pages.
type EmbedHandler struct {
	settings domain.SettingsLoader
	renderer *frontend.Renderer
	log      *logrus.Logger
}

// NewEmbedHandler creates an EmbedHandler.
func NewEmbedHandler(s domain.SettingsLoader, r *frontend.Renderer, log *logrus.Logger) *EmbedHandler {
	return &EmbedHandler{settings: s, renderer: r, log: log}
}

// Fragment handles GET /api/v1/embed. It answers 204 until the connector is
// configured.
func (h *EmbedHandler) Fragment(c *gin.Context) {
	opts, err := h.settings.Load(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("loading settings for embed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}

	html, err := h.renderer.RenderString(opts)
	if err != nil {
		h.log.WithError(err).Error("rendering embed fragment")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}
	if html == "" {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
