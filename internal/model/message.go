package model

import (
	"time"
)

// Message is the single persisted entity. Rows are write-once.
type Message struct {
	MessageID string    `json:"message_id"`
	Sender    string    `json:"from"`
	Recipient string    `json:"to"`
	Ts        time.Time `json:"ts"`
	Text      *string   `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookMessageRequest is the inbound payload of POST /webhook.
// Ts is kept as the raw string so the trailing "Z" can be checked textually.
type WebhookMessageRequest struct {
	MessageID string  `json:"message_id" validate:"required,max=255"`
	From      string  `json:"from" validate:"required,e164strict"`
	To        string  `json:"to" validate:"required,e164strict"`
	Ts        string  `json:"ts" validate:"required,utcz,isotime"`
	Text      *string `json:"text" validate:"omitempty,max=4096"`
}

type WebhookResponse struct {
	Status string `json:"status" example:"ok"`
}

type ErrorResponse struct {
	Detail string `json:"detail" example:"invalid signature"`
}

type MessagesListResponse struct {
	Data   []Message `json:"data"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type SenderCount struct {
	From  string `json:"from"`
	Count int64  `json:"count"`
}

type StatsResponse struct {
	TotalMessages     int64         `json:"total_messages"`
	SendersCount      int64         `json:"senders_count"`
	MessagesPerSender []SenderCount `json:"messages_per_sender"`
	FirstMessageTs    *time.Time    `json:"first_message_ts"`
	LastMessageTs     *time.Time    `json:"last_message_ts"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
