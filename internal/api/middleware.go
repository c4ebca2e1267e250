package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	authHeader    = "auth-token"
	userIDContext = "userID"
)

// requireUser resolves the auth-token header and stores the user id on the context
func (h *Handler) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := h.gate.Authenticate(c.GetHeader(authHeader))
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrMissingCredential) {
				reason = "missing"
			}
			util.AuthFailuresTotal.WithLabelValues(reason + "_token").Inc()

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errors": "Please authenticate using a valid token",
			})
			return
		}

		c.Set(userIDContext, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDContext)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// corsMiddleware lets the storefront and admin SPAs call the API from any origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Accept, auth-token, Idempotency-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
