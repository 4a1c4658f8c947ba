package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/searchcraftinc/searchcraft-connect/internal/httputil"
	"github.com/searchcraftinc/searchcraft-connect/internal/metrics"
)

func respondError(c *gin.Context, code int, errCode, message string) {
	metrics.ErrorsTotal.WithLabelValues(errCode).Inc()
	httputil.RespondError(c, code, errCode, message)
}
