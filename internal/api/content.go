package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
	"github.com/searchcraftinc/searchcraft-connect/internal/ingest"
)

// maxEventsPerRequest caps one webhook delivery.
const maxEventsPerRequest = 1000

// ContentHandler accepts content change events from the site.
type ContentHandler struct {
	sink domain.ContentSink
	log  *logrus.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(sink domain.ContentSink, log *logrus.Logger) *ContentHandler {
	return &ContentHandler{sink: sink, log: log}
}

type contentRequest struct {
	Events []ingest.Event `json:"events"`
}

// Submit handles POST /admin/content/events. Events are applied
// asynchronously; a 202 only means they were queued.
func (h *ContentHandler) Submit(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if len(req.Events) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "events must not be empty")
		return
	}
	if len(req.Events) > maxEventsPerRequest {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest,
			fmt.Sprintf("at most %d events per request", maxEventsPerRequest))
		return
	}
	for i, e := range req.Events {
		if err := e.Validate(); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, fmt.Sprintf("events[%d]: %v", i, err))
			return
		}
	}

	if err := h.sink.Submit(c.Request.Context(), req.Events); err != nil {
		if errors.Is(err, ingest.ErrQueueFull) {
			c.Header("Retry-After", "5")
			respondError(c, http.StatusServiceUnavailable, ErrCodeQueueFull, err.Error())
			return
		}
		h.log.WithError(err).Error("submitting content events")
		respondError(c, http.StatusServiceUnavailable, ErrCodeInternalError, "event sink unavailable")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": len(req.Events)})
}
