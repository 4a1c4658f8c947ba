package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
	"github.com/searchcraftinc/searchcraft-connect/internal/httputil"
	"github.com/searchcraftinc/searchcraft-connect/internal/metrics"
	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

// Nonce actions for the settings forms.
const (
	ActionSaveSettings  = "searchcraft_save_settings"
	ActionResetSettings = "searchcraft_reset_settings"
)

var nonceActions = map[string]bool{
	ActionSaveSettings:  true,
	ActionResetSettings: true,
}

// SettingsHandler serves the admin settings endpoints.
type SettingsHandler struct {
	settings domain.SettingsService
	nonces   domain.NonceService
	log      *logrus.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(s domain.SettingsService, n domain.NonceService, log *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{settings: s, nonces: n, log: log}
}

type settingsResponse struct {
	Options              settings.Options  `json:"options"`
	Configured           bool              `json:"configured"`
	Nonces               map[string]string `json:"nonces"`
	NonceLifetimeSeconds int               `json:"nonce_lifetime_seconds"`
}

func (h *SettingsHandler) respond(c *gin.Context, status int, opts settings.Options) {
	subject := adminSubject(c)
	nonces := make(map[string]string, len(nonceActions))
	for action := range nonceActions {
		nonces[action] = h.nonces.Create(action, subject)
	}

	c.JSON(status, settingsResponse{
		Options:              opts.Redacted(),
		Configured:           opts.Configured(),
		Nonces:               nonces,
		NonceLifetimeSeconds: int(h.nonces.Lifetime().Seconds()),
	})
}

// Get handles GET /admin/settings. Keys are masked; fresh nonces for the
// settings forms are included.
func (h *SettingsHandler) Get(c *gin.Context) {
	opts, err := h.settings.Load(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("loading settings")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}
	h.respond(c, http.StatusOK, opts)
}

// Update handles POST /admin/settings. Blank keys keep the stored keys.
func (h *SettingsHandler) Update(c *gin.Context) {
	var u settings.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	opts, err := h.settings.Update(c.Request.Context(), u)
	if err != nil {
		var verr *settings.ValidationError
		if errors.As(err, &verr) {
			metrics.ErrorsTotal.WithLabelValues(ErrCodeValidationError).Inc()
			httputil.RespondFieldError(c, http.StatusUnprocessableEntity, ErrCodeValidationError, verr.Field, verr.Message)
			return
		}
		h.log.WithError(err).Error("saving settings")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":     "settings.update",
		"index_id":   opts.IndexID,
		"configured": opts.Configured(),
	}).Info("audit")

	h.respond(c, http.StatusOK, opts)
}

// Reset handles POST /admin/settings/reset.
func (h *SettingsHandler) Reset(c *gin.Context) {
	if err := h.settings.Reset(c.Request.Context()); err != nil {
		h.log.WithError(err).Error("resetting settings")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}

	h.log.WithField("action", "settings.reset").Info("audit")
	h.respond(c, http.StatusOK, settings.Defaults())
}

// Nonce handles GET /admin/nonce?action=....
func (h *SettingsHandler) Nonce(c *gin.Context) {
	action := c.DefaultQuery("action", ActionSaveSettings)
	if !nonceActions[action] {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown nonce action")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":     action,
		"nonce":      h.nonces.Create(action, adminSubject(c)),
		"expires_in": int(h.nonces.Lifetime().Seconds()),
	})
}
