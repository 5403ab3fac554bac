package natsrpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck/adbot/internal/logging"
	"github.com/flightdeck/adbot/pkg/domain"
)

type recordingBot struct {
	last *domain.Activity
	resp *domain.TurnResponse
	err  error
}

func (b *recordingBot) Turn(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error) {
	b.last = activity
	if b.err != nil {
		return nil, b.err
	}
	return b.resp, nil
}

func newTestTransport(bot TurnHandler) *Transport {
	return &Transport{
		cfg:    Config{Subject: "adbot.turns", TurnTimeout: time.Second},
		bot:    bot,
		logger: logging.NewNop(),
	}
}

func TestHandleRequest_DispatchesActivity(t *testing.T) {
	bot := &recordingBot{resp: &domain.TurnResponse{
		Replies: []domain.Reply{domain.TextReply("hi", domain.InputHintIgnoring)},
	}}
	tr := newTestTransport(bot)

	data, err := json.Marshal(domain.Activity{
		Type:         domain.ActivityMessage,
		Text:         "hello",
		ChannelID:    "nats",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		From:         domain.ChannelAccount{ID: "user-1"},
	})
	require.NoError(t, err)

	tr.handleRequest(&nats.Msg{Data: data})

	require.NotNil(t, bot.last)
	assert.Equal(t, "hello", bot.last.Text)
	assert.Equal(t, "conv-1", bot.last.Conversation.ID)
}

func TestHandleRequest_MalformedPayloadDoesNotReachBot(t *testing.T) {
	bot := &recordingBot{}
	tr := newTestTransport(bot)

	tr.handleRequest(&nats.Msg{Data: []byte("{not json")})

	assert.Nil(t, bot.last)
}

func TestHandleRequest_TurnErrorDoesNotPanic(t *testing.T) {
	bot := &recordingBot{err: errors.New("store unavailable")}
	tr := newTestTransport(bot)

	data, err := json.Marshal(domain.Activity{
		Type:         domain.ActivityMessage,
		Text:         "hello",
		ChannelID:    "nats",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		From:         domain.ChannelAccount{ID: "user-1"},
	})
	require.NoError(t, err)

	tr.handleRequest(&nats.Msg{Data: data})
	require.NotNil(t, bot.last)
}

func TestNew_RequiresSubject(t *testing.T) {
	_, err := New(Config{}, &recordingBot{})
	require.Error(t, err)
}

func TestEnvelopeShape(t *testing.T) {
	env := Envelope{
		Status:       StatusError,
		ErrorCode:    ErrorTurn,
		ErrorMessage: "boom",
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error_code":"TURN_FAILED","error_message":"boom"}`, string(data))
}
