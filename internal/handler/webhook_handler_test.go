package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inbound/internal/repository"
	"inbound/internal/security"
	"inbound/internal/service"
	"inbound/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/useinsider/go-pkg/inslogger"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, body []byte, signature string) (repository.InsertResult, error) {
	args := m.Called(ctx, body, signature)
	return args.Get(0).(repository.InsertResult), args.Error(1)
}

func postWebhook(svc service.IngestService, body, signature string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, inslogger.NewLogger(inslogger.Debug))
	router := gin.New()
	router.POST("/webhook", h.Receive)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(security.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReceive_PassesRawBodyAndSignature(t *testing.T) {
	body := `{"message_id":"m1"}`
	svc := new(MockIngestService)
	svc.On("Ingest", mock.Anything, []byte(body), "abc123").Return(repository.Inserted, nil)

	w := postWebhook(svc, body, "abc123")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestReceive_DuplicateIsOK(t *testing.T) {
	svc := new(MockIngestService)
	svc.On("Ingest", mock.Anything, mock.Anything, mock.Anything).Return(repository.AlreadyExisted, nil)

	w := postWebhook(svc, `{}`, "sig")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReceive_ErrorMapping(t *testing.T) {
	verr := &validation.Error{Fields: []validation.FieldError{{Field: "from", Message: "bad"}}}

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"invalid signature", security.ErrInvalidSignature, http.StatusUnauthorized, `{"detail":"invalid signature"}`},
		{"invalid json", service.ErrInvalidJSON, http.StatusUnprocessableEntity, `{"detail":"Invalid JSON"}`},
		{"validation", verr, http.StatusUnprocessableEntity, `{"detail":"validation failed: from: bad"}`},
		{"storage", fmt.Errorf("store message m1: %w", errors.New("disk full")), http.StatusInternalServerError, `{"detail":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockIngestService)
			svc.On("Ingest", mock.Anything, mock.Anything, mock.Anything).Return(repository.Inserted, tt.err)

			w := postWebhook(svc, `{}`, "sig")

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
