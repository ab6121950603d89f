package handler

import (
	"errors"
	"net/http"

	"inbound/internal/model"
	"inbound/internal/security"
	"inbound/internal/service"
	"inbound/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/useinsider/go-pkg/inslogger"
)

type WebhookHandler struct {
	ingest service.IngestService
	logger inslogger.Interface
}

func NewWebhookHandler(ingest service.IngestService, logger inslogger.Interface) *WebhookHandler {
	return &WebhookHandler{
		ingest: ingest,
		logger: logger,
	}
}

// Receive ingests one signed inbound message.
// @Summary Receive an inbound message
// @Description Verifies the HMAC-SHA256 signature of the raw body and stores the message. Repeated message_id values are acknowledged without a second write.
// @Tags webhook
// @Accept json
// @Produce json
// @Param X-Signature header string true "hex HMAC-SHA256 of the raw body"
// @Param message body model.WebhookMessageRequest true "Inbound message"
// @Success 200 {object} model.WebhookResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /webhook [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Warnf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Detail: "could not read request body"})
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), body, c.GetHeader(security.SignatureHeader))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set(resultKey, result.String())
	c.JSON(http.StatusOK, model.WebhookResponse{Status: "ok"})
}

func (h *WebhookHandler) writeError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.Is(err, security.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Detail: security.ErrInvalidSignature.Error()})
	case errors.Is(err, service.ErrInvalidJSON):
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Detail: service.ErrInvalidJSON.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Detail: verr.Error()})
	default:
		h.logger.Errorf("Failed to ingest webhook message, request_id=%s: %v", c.GetString(requestIDKey), err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "internal server error"})
	}
}
