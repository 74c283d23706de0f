package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/identity"
)

const (
	requestIDHeader = "X-Request-Id"
	userIDHeader    = "X-User-ID"
	requestIDKey    = "requestID"

	unexpectedError = "Uh oh! An unexpected error occurred."
)

// requestIDMiddleware extracts or generates request IDs.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// loggingMiddleware logs requests.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("request completed",
			"requestID", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// recoveryMiddleware turns a handler panic into the generic 500 envelope.
func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		panicRecoveries.Inc()
		slog.Error("panic recovered",
			"error", fmt.Sprintf("%v", recovered),
			"requestID", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": unexpectedError})
	})
}

// Identity resolves the owning user from the X-User-ID header, then the
// userID query parameter, then the configured default.
func (h *Handler) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := h.DefaultUserID

		raw, field := c.GetHeader(userIDHeader), userIDHeader
		if strings.TrimSpace(raw) == "" {
			raw, field = c.Query("userID"), "userID"
		}
		if strings.TrimSpace(raw) != "" {
			id, err := identity.ParseID(field, raw)
			if err != nil {
				h.fail(c, err)
				return
			}
			userID = id
		}

		c.Request = c.Request.WithContext(identity.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
