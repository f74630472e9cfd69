package middleware

import (
	"log/slog"
	"time"

	"grocery-order-service/pkg/ctxmanage"
	"grocery-order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger tags every request with a trace id and logs method, path, status
// and latency once the handler chain finishes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.Request.Header.Get(ctxmanage.TraceIDHeader)
		if traceId == "" {
			traceId = uuid.NewString()
		}
		ctxmanage.SetTraceId(c, traceId)
		c.Writer.Header().Set(ctxmanage.TraceIDHeader, traceId)

		start := time.Now()
		c.Next()

		slog.Info("request completed",
			slog.String(logkey.TraceID, traceId),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
