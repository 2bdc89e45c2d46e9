package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/synergy-dev/synergy/internal/types"
)

// RequestID tags every request with a fresh id and writes one access-log entry
// when the handler chain finishes.
func RequestID(logger *logrus.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := uuid.New().String()
		ctx.Set(types.ContextRequestIDKey, id)
		ctx.Writer.Header().Set("X-Request-ID", id)

		start := time.Now()
		ctx.Next()

		logger.WithFields(logrus.Fields{
			"request_id":  id,
			"method":      ctx.Request.Method,
			"path":        ctx.Request.URL.Path,
			"status":      ctx.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request completed")
	}
}
