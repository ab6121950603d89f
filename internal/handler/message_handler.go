package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inbound/internal/model"
	"inbound/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/useinsider/go-pkg/inslogger"
)

type MessageHandler struct {
	store  repository.MessageStore
	logger inslogger.Interface
}

func NewMessageHandler(store repository.MessageStore, logger inslogger.Interface) *MessageHandler {
	return &MessageHandler{
		store:  store,
		logger: logger,
	}
}

type listQuery struct {
	Limit  int    `form:"limit,default=50" binding:"min=1,max=100"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
	From   string `form:"from"`
	Since  string `form:"since"`
	Q      string `form:"q"`
}

// naive timestamps in ?since= are read as UTC
var sinceLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseSince(raw string) (time.Time, error) {
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("since: invalid ISO-8601 timestamp %q", raw)
}

// List returns stored messages ordered by (ts, message_id).
// @Summary List messages
// @Description Paginated list of messages, optionally filtered by sender, minimum timestamp and text substring.
// @Tags messages
// @Produce json
// @Param limit query int false "Page size (1-100)" default(50)
// @Param offset query int false "Rows to skip" default(0)
// @Param from query string false "Exact sender in E.164 format"
// @Param since query string false "Only messages with ts >= since (ISO-8601)"
// @Param q query string false "Case-insensitive substring of text"
// @Success 200 {object} model.MessagesListResponse
// @Failure 422 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Detail: describeQueryError(err)})
		return
	}

	filter := repository.ListFilter{
		Sender: query.From,
		Query:  query.Q,
	}
	if query.Since != "" {
		since, err := parseSince(query.Since)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Detail: err.Error()})
			return
		}
		filter.Since = &since
	}

	page := repository.Page{Limit: query.Limit, Offset: query.Offset}
	messages, total, err := h.store.List(c.Request.Context(), filter, page)
	if err != nil {
		h.logger.Errorf("Failed to list messages: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "internal server error"})
		return
	}

	if messages == nil {
		messages = []model.Message{}
	}

	c.JSON(http.StatusOK, model.MessagesListResponse{
		Data:   messages,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// Stats returns aggregate counters over all stored messages.
// @Summary Message statistics
// @Description Totals, top 10 senders by count and the first/last message timestamps.
// @Tags stats
// @Produce json
// @Success 200 {object} model.StatsResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /stats [get]
func (h *MessageHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to compute stats: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "internal server error"})
		return
	}

	perSender := stats.TopSenders
	if perSender == nil {
		perSender = []model.SenderCount{}
	}

	c.JSON(http.StatusOK, model.StatsResponse{
		TotalMessages:     stats.TotalCount,
		SendersCount:      stats.UniqueSenderCount,
		MessagesPerSender: perSender,
		FirstMessageTs:    stats.FirstTs,
		LastMessageTs:     stats.LastTs,
	})
}

func describeQueryError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid query parameters: " + err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be less than or equal to %s", name, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", name))
		}
	}
	return strings.Join(parts, "; ")
}
