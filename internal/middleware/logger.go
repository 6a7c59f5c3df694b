package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs each HTTP request with method, target, status, request body
// size, and latency. The query string is part of the target because the
// part and object endpoints carry their identity there (uploadId,
// partNumber, key).
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		target := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			target = target + "?" + raw
		}

		c.Next()

		requestID, _ := c.Get("request_id")
		log.Printf("[%s] %s %s %d %dB %s",
			requestID,
			c.Request.Method,
			target,
			c.Writer.Status(),
			c.Request.ContentLength,
			time.Since(start),
		)
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
