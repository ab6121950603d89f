package handler

import (
	"net/http"

	_ "inbound/docs"
	"inbound/internal/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/useinsider/go-pkg/inslogger"
)

type Handlers struct {
	Webhook  *WebhookHandler
	Messages *MessageHandler
	Health   *HealthHandler
}

// NewRouter registers the API routes. Access log and metrics wrap CORS so
// that preflight requests are logged and counted too.
func NewRouter(h Handlers, collector *metrics.Collector, logger inslogger.Interface) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		AccessLog(logger),
		collector.Middleware(),
		CORS(),
	)

	router.POST("/webhook", h.Webhook.Receive)
	router.GET("/messages", h.Messages.List)
	router.GET("/stats", h.Messages.Stats)

	health := router.Group("/health")
	health.GET("/live", h.Health.Live)
	health.GET("/ready", h.Health.Ready)

	router.GET(metrics.MetricsPath, gin.WrapH(collector.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerPreflight(router)

	return router
}

// registerPreflight adds an OPTIONS route per path so preflights resolve to
// the route template. CORS answers them before the handler runs.
func registerPreflight(router *gin.Engine) {
	seen := map[string]bool{}
	for _, route := range router.Routes() {
		if route.Method == http.MethodOptions || seen[route.Path] {
			continue
		}
		seen[route.Path] = true
		router.OPTIONS(route.Path, func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}
}
