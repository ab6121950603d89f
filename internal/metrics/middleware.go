package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	MetricsPath   = "/metrics"
	unmatchedPath = "unmatched"
)

// Middleware records every request except scrapes of MetricsPath. The path
// label is the matched route template so that ids never become labels.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.URL.Path == MetricsPath {
			ctx.Next()
			return
		}

		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		c.Observe(ctx.Request.Method, path, ctx.Writer.Status(), time.Since(start))
	}
}
