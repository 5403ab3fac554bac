package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck/adbot/pkg/domain"
)

type fakeBot struct {
	resp *domain.TurnResponse
	err  error
	last *domain.Activity
}

func (f *fakeBot) Turn(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error) {
	f.last = activity
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func postActivity(t *testing.T, handler http.Handler, activity domain.Activity) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(activity)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/turns", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleTurn_RepliesWithBatch(t *testing.T) {
	bot := &fakeBot{resp: &domain.TurnResponse{
		Replies: []domain.Reply{domain.TextReply("hello there", domain.InputHintIgnoring)},
	}}
	handler := NewHandler(bot)

	rec := postActivity(t, handler, domain.Activity{
		Type:         domain.ActivityMessage,
		Text:         "hi",
		ChannelID:    "test",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		From:         domain.ChannelAccount{ID: "user-1"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp domain.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "hello there", resp.Replies[0].Text)

	require.NotNil(t, bot.last)
	assert.Equal(t, "hi", bot.last.Text)
}

func TestHandleTurn_InvalidBody(t *testing.T) {
	handler := NewHandler(&fakeBot{})

	req := httptest.NewRequest(http.MethodPost, "/api/turns", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTurn_PayloadErrorIsBadRequest(t *testing.T) {
	bot := &fakeBot{err: &domain.PayloadDecodeError{Reason: "missing action title"}}
	handler := NewHandler(bot)

	rec := postActivity(t, handler, domain.Activity{
		Type:         domain.ActivityMessage,
		ChannelID:    "test",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		From:         domain.ChannelAccount{ID: "user-1"},
		Value:        map[string]any{"bogus": true},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing action title")
}

func TestHandleTurn_InternalError(t *testing.T) {
	bot := &fakeBot{err: errors.New("store unavailable")}
	handler := NewHandler(bot)

	rec := postActivity(t, handler, domain.Activity{
		Type:         domain.ActivityMessage,
		Text:         "hi",
		ChannelID:    "test",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		From:         domain.ChannelAccount{ID: "user-1"},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	handler := NewHandler(&fakeBot{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInfo(t *testing.T) {
	handler := NewHandler(&fakeBot{})

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "adbot-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewHandler(&fakeBot{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	handler := NewHandler(&fakeBot{})

	req := httptest.NewRequest(http.MethodOptions, "/api/turns", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
