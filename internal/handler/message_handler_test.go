package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inbound/internal/model"
	"inbound/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/useinsider/go-pkg/inslogger"
)

// Mock dependencies
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) InsertIfAbsent(ctx context.Context, message model.Message) (repository.InsertResult, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(repository.InsertResult), args.Error(1)
}

func (m *MockMessageStore) List(ctx context.Context, filter repository.ListFilter, page repository.Page) ([]model.Message, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]model.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageStore) Stats(ctx context.Context) (repository.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.Stats), args.Error(1)
}

func (m *MockMessageStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockMessageStore) Close() {}

func newMessageRouter(store repository.MessageStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMessageHandler(store, inslogger.NewLogger(inslogger.Debug))

	router := gin.New()
	router.GET("/messages", h.List)
	router.GET("/stats", h.Stats)
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListMessages_Defaults(t *testing.T) {
	store := new(MockMessageStore)
	store.On("List", mock.Anything, repository.ListFilter{}, repository.Page{Limit: 50, Offset: 0}).
		Return([]model.Message(nil), int64(0), nil)

	w := get(newMessageRouter(store), "/messages")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"limit":50,"offset":0}`, w.Body.String())
	store.AssertExpectations(t)
}

func TestListMessages_PassesFilters(t *testing.T) {
	since := time.Date(2025, 1, 15, 10, 3, 0, 0, time.UTC)
	ts := time.Date(2025, 1, 15, 10, 5, 0, 0, time.UTC)
	text := "Hello"

	store := new(MockMessageStore)
	store.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListFilter) bool {
		return f.Sender == "+919876543210" && f.Query == "hel" && f.Since != nil && f.Since.Equal(since)
	}), repository.Page{Limit: 2, Offset: 4}).Return([]model.Message{{
		MessageID: "m5",
		Sender:    "+919876543210",
		Recipient: "+14155550100",
		Ts:        ts,
		Text:      &text,
		CreatedAt: ts,
	}}, int64(7), nil)

	w := get(newMessageRouter(store), "/messages?limit=2&offset=4&from=%2B919876543210&since=2025-01-15T10:03:00Z&q=hel")

	require.Equal(t, http.StatusOK, w.Code)

	var resp model.MessagesListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Total)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 4, resp.Offset)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "m5", resp.Data[0].MessageID)
	assert.Equal(t, "+919876543210", resp.Data[0].Sender)
	store.AssertExpectations(t)
}

func TestListMessages_InvalidQuery(t *testing.T) {
	store := new(MockMessageStore)
	router := newMessageRouter(store)

	for _, target := range []string{
		"/messages?limit=0",
		"/messages?limit=101",
		"/messages?limit=abc",
		"/messages?offset=-1",
		"/messages?since=yesterday",
	} {
		w := get(router, target)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, target)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Detail, target)
	}
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestListMessages_StoreError(t *testing.T) {
	store := new(MockMessageStore)
	store.On("List", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Message(nil), int64(0), errors.New("connection reset"))

	w := get(newMessageRouter(store), "/messages")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestParseSince(t *testing.T) {
	want := time.Date(2025, 1, 15, 10, 3, 0, 0, time.UTC)
	for _, raw := range []string{"2025-01-15T10:03:00Z", "2025-01-15T15:33:00+05:30", "2025-01-15T10:03:00"} {
		got, err := parseSince(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	_, err := parseSince("15/01/2025")
	assert.Error(t, err)
}

func TestStats_Empty(t *testing.T) {
	store := new(MockMessageStore)
	store.On("Stats", mock.Anything).Return(repository.Stats{}, nil)

	w := get(newMessageRouter(store), "/stats")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_messages": 0,
		"senders_count": 0,
		"messages_per_sender": [],
		"first_message_ts": null,
		"last_message_ts": null
	}`, w.Body.String())
}

func TestStats_Populated(t *testing.T) {
	first := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	last := time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC)

	store := new(MockMessageStore)
	store.On("Stats", mock.Anything).Return(repository.Stats{
		TotalCount:        3,
		UniqueSenderCount: 2,
		TopSenders: []model.SenderCount{
			{From: "+111", Count: 2},
			{From: "+222", Count: 1},
		},
		FirstTs: &first,
		LastTs:  &last,
	}, nil)

	w := get(newMessageRouter(store), "/stats")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_messages": 3,
		"senders_count": 2,
		"messages_per_sender": [{"from":"+111","count":2},{"from":"+222","count":1}],
		"first_message_ts": "2025-01-15T10:00:00Z",
		"last_message_ts": "2025-01-15T11:00:00Z"
	}`, w.Body.String())
}

func TestStats_StoreError(t *testing.T) {
	store := new(MockMessageStore)
	store.On("Stats", mock.Anything).Return(repository.Stats{}, errors.New("boom"))

	w := get(newMessageRouter(store), "/stats")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())
}
