package adbot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adbot "github.com/flightdeck/adbot"
	"github.com/flightdeck/adbot/internal/adapters/memory"
	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/ports"
)

type scriptedRecognizer struct {
	configured bool
	results    map[string]*domain.Recognition
	err        error
}

func (s *scriptedRecognizer) IsConfigured() bool { return s.configured }

func (s *scriptedRecognizer) Recognize(ctx context.Context, utterance string) (*domain.Recognition, error) {
	if s.err != nil {
		return nil, s.err
	}
	if rec, ok := s.results[utterance]; ok {
		return rec, nil
	}
	return &domain.Recognition{Text: utterance}, nil
}

func messageActivity(text string) *domain.Activity {
	return &domain.Activity{
		Type:         domain.ActivityMessage,
		ChannelID:    "test",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		From:         domain.ChannelAccount{ID: "user-1"},
		Recipient:    domain.ChannelAccount{ID: "bot"},
		Text:         text,
	}
}

func newBot(t *testing.T, store ports.StateStore, rec ports.Recognizer) *adbot.Bot {
	t.Helper()
	bot, err := adbot.New(store, rec)
	require.NoError(t, err)
	return bot
}

func texts(resp *domain.TurnResponse) []string {
	out := make([]string, len(resp.Replies))
	for i, r := range resp.Replies {
		out[i] = r.Text
	}
	return out
}

func TestTurn_WelcomeOnConversationUpdate(t *testing.T) {
	bot := newBot(t, memory.New(), &scriptedRecognizer{configured: true})

	resp, err := bot.Turn(context.Background(), &domain.Activity{
		Type:         domain.ActivityConversationUpdate,
		ChannelID:    "test",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		Recipient:    domain.ChannelAccount{ID: "bot"},
		MembersAdded: []domain.ChannelAccount{{ID: "user-1"}, {ID: "bot"}},
	})
	require.NoError(t, err)

	// The adaptive welcome card, then the main dialog's greeting.
	require.Len(t, resp.Replies, 2)
	assert.Equal(t, "Welcome!", resp.Replies[0].Text)
	require.Len(t, resp.Replies[0].Attachments, 1)
	assert.Contains(t, resp.Replies[1].Text, "What can I help you with today?")
}

func TestTurn_BotOnlyMembersAddedStaysQuiet(t *testing.T) {
	bot := newBot(t, memory.New(), &scriptedRecognizer{configured: true})

	resp, err := bot.Turn(context.Background(), &domain.Activity{
		Type:         domain.ActivityConversationUpdate,
		ChannelID:    "test",
		Conversation: domain.ChannelAccount{ID: "conv-1"},
		Recipient:    domain.ChannelAccount{ID: "bot"},
		MembersAdded: []domain.ChannelAccount{{ID: "bot"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Replies)
}

func TestTurn_FullSearchConversation(t *testing.T) {
	rec := &scriptedRecognizer{
		configured: true,
		results: map[string]*domain.Recognition{
			"can i view a file called bae 146-140": {
				Intents: []domain.IntentScore{{Intent: domain.IntentFileName, Score: 0.92}},
				Entities: []domain.Entity{
					{Category: "FileName", Text: "bae 146-140"},
				},
			},
		},
	}
	bot := newBot(t, memory.New(), rec)
	ctx := context.Background()

	resp, err := bot.Turn(ctx, messageActivity("hi"))
	require.NoError(t, err)
	assert.Contains(t, texts(resp)[0], "What can I help you with today?")

	resp, err = bot.Turn(ctx, messageActivity("can i view a file called bae 146-140"))
	require.NoError(t, err)
	assert.Contains(t, texts(resp)[0], "Which information do you have?")

	resp, err = bot.Turn(ctx, messageActivity("File Name"))
	require.NoError(t, err)
	got := texts(resp)
	require.Len(t, got, 2)
	assert.Equal(t, "I'll search for a document for a file name: bae 146-140", got[0])
	assert.Equal(t, "Do you have more documents you are searching for?", got[1])
}

func TestTurn_StateSurvivesRestart(t *testing.T) {
	// Same store, new Bot: mid-dialog state picks up where it left off.
	store := memory.New()
	rec := &scriptedRecognizer{
		configured: true,
		results: map[string]*domain.Recognition{
			"find an AD": {Intents: []domain.IntentScore{{Intent: domain.IntentFileName, Score: 0.9}}},
		},
	}
	ctx := context.Background()

	bot := newBot(t, store, rec)
	_, err := bot.Turn(ctx, messageActivity("hi"))
	require.NoError(t, err)
	_, err = bot.Turn(ctx, messageActivity("find an AD"))
	require.NoError(t, err)

	restarted := newBot(t, store, rec)
	resp, err := restarted.Turn(ctx, messageActivity("1"))
	require.NoError(t, err)
	assert.Contains(t, texts(resp)[0], "What is the name of the file")
}

func TestTurn_MenuSelectionRecordsRole(t *testing.T) {
	store := memory.New()
	bot := newBot(t, store, &scriptedRecognizer{configured: true})
	ctx := context.Background()

	activity := messageActivity("")
	activity.Value = map[string]any{
		"action": map[string]any{
			"data": map[string]any{"title": "Maintainer"},
		},
	}

	resp, err := bot.Turn(ctx, activity)
	require.NoError(t, err)
	require.Len(t, resp.Replies, 1)
	assert.Contains(t, resp.Replies[0].Text, "You selected Maintainer.")

	user, err := store.LoadUser(ctx, activity.UserKey())
	require.NoError(t, err)
	assert.Equal(t, "Maintainer", user.Role)
	assert.False(t, user.LastSeen.IsZero())
}

func TestTurn_AdministratorMenuResponse(t *testing.T) {
	bot := newBot(t, memory.New(), &scriptedRecognizer{configured: true})

	activity := messageActivity("")
	activity.Value = map[string]any{
		"action": map[string]any{
			"data": map[string]any{"title": "Administrator"},
		},
	}

	resp, err := bot.Turn(context.Background(), activity)
	require.NoError(t, err)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t,
		"You selected Maintenance Administrator. Please select what you want to get helped with. \n 1. Upload AD \n2. View Analytics",
		resp.Replies[0].Text)
}

func TestTurn_MalformedMenuPayloadFailsTurn(t *testing.T) {
	bot := newBot(t, memory.New(), &scriptedRecognizer{configured: true})

	activity := messageActivity("")
	activity.Value = map[string]any{"unexpected": "shape"}

	_, err := bot.Turn(context.Background(), activity)
	var decodeErr *domain.PayloadDecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestTurn_RecognizerOutageDegradesGracefully(t *testing.T) {
	rec := &scriptedRecognizer{configured: true}
	bot := newBot(t, memory.New(), rec)
	ctx := context.Background()

	_, err := bot.Turn(ctx, messageActivity("hi"))
	require.NoError(t, err)

	rec.err = domain.ErrRecognizerUnavailable
	resp, err := bot.Turn(ctx, messageActivity("find something"))
	require.NoError(t, err)
	assert.Contains(t, texts(resp)[0], "having trouble understanding requests")

	// Recovery: the loop re-prompts and the next utterance works again.
	rec.err = nil
	resp, err = bot.Turn(ctx, messageActivity("hello again"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Replies)
}

func TestTurn_UnconfiguredRecognizerStillSearches(t *testing.T) {
	bot := newBot(t, memory.New(), &scriptedRecognizer{configured: false})
	ctx := context.Background()

	resp, err := bot.Turn(ctx, messageActivity("hi"))
	require.NoError(t, err)

	got := texts(resp)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "NOTE: CLU is not configured.")
	assert.Contains(t, got[1], "Which information do you have?")
}

func TestTurn_LifecycleHooksFire(t *testing.T) {
	var turnStarts, turnEnds, pushes int
	hooks := domain.LifecycleHooks{
		OnTurnStart:  func(context.Context, *domain.TurnEvent) { turnStarts++ },
		OnTurnEnd:    func(_ context.Context, e *domain.TurnEvent) { turnEnds++; assert.NoError(t, e.Err) },
		OnDialogPush: func(context.Context, *domain.DialogEvent) { pushes++ },
	}
	bot, err := adbot.New(memory.New(), &scriptedRecognizer{configured: true},
		adbot.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	_, err = bot.Turn(context.Background(), messageActivity("hi"))
	require.NoError(t, err)

	assert.Equal(t, 1, turnStarts)
	assert.Equal(t, 1, turnEnds)
	assert.Equal(t, 1, pushes)
}
