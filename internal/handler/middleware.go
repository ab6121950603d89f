package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/useinsider/go-pkg/inslogger"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	resultKey    = "result"
)

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// CORS allows any origin, method and header. Preflight requests end here.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			if headers := c.GetHeader("Access-Control-Request-Headers"); headers != "" {
				c.Header("Access-Control-Allow-Headers", headers)
			} else {
				c.Header("Access-Control-Allow-Headers", "*")
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// AccessLog writes one line per request. Webhook requests also carry the
// ingest result.
func AccessLog(logger inslogger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		line := "%s %s status=%d latency_ms=%.2f request_id=%s"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, float64(latency.Microseconds()) / 1000, c.GetString(requestIDKey)}
		if result := c.GetString(resultKey); result != "" {
			line += " result=%s"
			args = append(args, result)
		}

		if status >= http.StatusInternalServerError {
			logger.Errorf(line, args...)
			return
		}
		logger.Logf(line, args...)
	}
}
