package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-Id"

// GetTraceIdOfRequest returns the trace id set by the logging middleware,
// falling back to the request header or a fresh uuid so handlers always
// have something to log.
func GetTraceIdOfRequest(c *gin.Context) string {
	if traceId, ok := c.Get(TraceIDHeader); ok {
		if s, ok := traceId.(string); ok && s != "" {
			return s
		}
	}
	if s := c.Request.Header.Get(TraceIDHeader); s != "" {
		return s
	}
	return uuid.NewString()
}

// SetTraceId stores the trace id on the gin context for downstream handlers.
func SetTraceId(c *gin.Context, traceId string) {
	c.Set(TraceIDHeader, traceId)
}
