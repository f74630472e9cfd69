package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"grocery-order-service/internal/auth"
	"grocery-order-service/pkg/ctxmanage"
	"grocery-order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

type Mid struct {
	keys *auth.Keys
}

func NewMid(keys *auth.Keys) (*Mid, error) {
	if keys == nil {
		return nil, fmt.Errorf("auth keys are nil")
	}
	return &Mid{keys: keys}, nil
}

// Authentication verifies the Bearer token and stashes the claims on the
// request context for handlers to read.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		authHeader := c.Request.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			slog.Error("missing or malformed authorization header", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := m.keys.ValidateToken(parts[1])
		if err != nil {
			slog.Error("token validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminOnly gates store-management endpoints behind the admin role.
func (m *Mid) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		if !ok || !claims.HasRole("admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
