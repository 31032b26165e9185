package middleware

import (
	"time"

	"essay-feed/logger"

	"github.com/gin-gonic/gin"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		line := "%s %s %s %d %s"
		args := []any{c.GetString(RequestIDKey), c.Request.Method, path, status, time.Since(start)}

		switch {
		case status >= 500:
			logger.Errorf(line, args...)
		case status >= 400:
			logger.Warningf(line, args...)
		default:
			logger.Infof(line, args...)
		}
	}
}
