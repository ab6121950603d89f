package handler

import (
	"context"
	"net/http"
	"time"

	"inbound/internal/model"
	"inbound/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/useinsider/go-pkg/inslogger"
)

const (
	checkOK            = "ok"
	checkFailed        = "failed"
	checkNotConfigured = "not configured"

	defaultPingTimeout = 2 * time.Second
)

type HealthHandler struct {
	store            repository.MessageStore
	secretConfigured bool
	pingTimeout      time.Duration
	logger           inslogger.Interface
}

func NewHealthHandler(store repository.MessageStore, secretConfigured bool, logger inslogger.Interface) *HealthHandler {
	return &HealthHandler{
		store:            store,
		secretConfigured: secretConfigured,
		pingTimeout:      defaultPingTimeout,
		logger:           logger,
	}
}

// Live reports that the process is up.
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{Status: "ok"})
}

// Ready reports whether storage is reachable and a webhook secret is set.
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Failure 503 {object} model.HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{}
	ready := true

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warnf("Readiness check failed: database not reachable: %v", err)
		checks["database"] = checkFailed
		ready = false
	} else {
		checks["database"] = checkOK
	}

	if h.secretConfigured {
		checks["webhook_secret"] = checkOK
	} else {
		h.logger.Warn("Readiness check failed: WEBHOOK_SECRET not configured")
		checks["webhook_secret"] = checkNotConfigured
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, model.HealthResponse{Status: "not ready", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, model.HealthResponse{Status: "ok", Checks: checks})
}
