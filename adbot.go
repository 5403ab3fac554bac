/*
Package adbot is a conversational engine for searching Airworthiness
Directive (AD) documents. It routes each inbound activity through a
persisted dialog stack: a top-level routing dialog recognizes the
user's intent (via Azure Conversational Language Understanding) and a
search dialog collects whatever document identifiers are still missing,
one prompt per turn.

The engine is transport-agnostic: the HTTP and NATS adapters under
pkg/adapters and the console loop in cmd/adbot all feed activities into
Bot.Turn and relay the replies. State lives behind ports.StateStore, so
a single process can run on the in-memory store while a fleet shares
Redis and serializes turns with the distributed lock.
*/
package adbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flightdeck/adbot/internal/flows"
	"github.com/flightdeck/adbot/internal/logging"
	"github.com/flightdeck/adbot/internal/retry"
	"github.com/flightdeck/adbot/pkg/dialog"
	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/ports"
	"github.com/flightdeck/adbot/pkg/session"
)

// Bot dispatches activities to the dialog engine and persists the
// resulting state. It is safe for concurrent use; turns for the same
// conversation are serialized by the session manager.
type Bot struct {
	sessions  *session.Manager
	sequencer *dialog.Sequencer
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	locker ports.DistributedLocker
	commit retry.Policy
	depth  int
}

// Option configures the Bot.
type Option func(*Bot)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = hooks
	}
}

// WithLocker enables distributed turn locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Bot) {
		b.locker = locker
	}
}

// WithCommitPolicy overrides the retry policy for end-of-turn saves.
func WithCommitPolicy(p retry.Policy) Option {
	return func(b *Bot) {
		b.commit = p
	}
}

// WithMaxStackDepth bounds the dialog stack.
func WithMaxStackDepth(n int) Option {
	return func(b *Bot) {
		b.depth = n
	}
}

// New creates a Bot over the given store and recognizer.
func New(store ports.StateStore, recognizer ports.Recognizer, opts ...Option) (*Bot, error) {
	b := &Bot{
		logger: logging.NewNop(),
		commit: retry.DefaultPolicy(),
		depth:  dialog.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(b)
	}

	reg := dialog.NewRegistry()
	if err := flows.Register(reg, recognizer); err != nil {
		return nil, fmt.Errorf("register flows: %w", err)
	}

	b.sequencer = dialog.NewSequencer(reg,
		dialog.WithMaxDepth(b.depth),
		dialog.WithHooks(b.hooks),
		dialog.WithLogger(b.logger),
	)

	sessionOpts := []session.Option{
		session.WithLogger(b.logger),
		session.WithCommitPolicy(b.commit),
	}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker))
	}
	b.sessions = session.NewManager(store, sessionOpts...)

	return b, nil
}

// Turn processes one inbound activity and returns every reply produced,
// in order. State is committed before Turn returns; a failed commit
// fails the whole turn so the caller can surface the error instead of
// silently dropping dialog progress.
func (b *Bot) Turn(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error) {
	start := time.Now()
	event := &domain.TurnEvent{
		ChannelID:      activity.ChannelID,
		ConversationID: activity.Conversation.ID,
		ActivityType:   activity.Type,
	}
	if b.hooks.OnTurnStart != nil {
		b.hooks.OnTurnStart(ctx, event)
	}

	resp, err := b.dispatch(ctx, activity)

	event.Duration = time.Since(start)
	event.Err = err
	if b.hooks.OnTurnEnd != nil {
		b.hooks.OnTurnEnd(ctx, event)
	}
	if err != nil {
		b.logger.Error("turn failed",
			"channel_id", activity.ChannelID,
			"conversation_id", activity.Conversation.ID,
			"activity_type", activity.Type,
			"err", err,
		)
		return nil, err
	}

	b.logger.Debug("turn complete",
		"conversation_id", activity.Conversation.ID,
		"replies", len(resp.Replies),
		"duration", event.Duration,
	)
	return resp, nil
}

func (b *Bot) dispatch(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error) {
	switch activity.Type {
	case domain.ActivityConversationUpdate:
		return b.onConversationUpdate(ctx, activity)
	case domain.ActivityMessage:
		if activity.Value != nil {
			return b.onMenuSelection(ctx, activity)
		}
		return b.onMessage(ctx, activity)
	default:
		// Unknown activity types are acknowledged without replies.
		return &domain.TurnResponse{}, nil
	}
}

// onConversationUpdate greets each newly added member (other than the
// bot itself) with the welcome card and starts the main dialog.
func (b *Bot) onConversationUpdate(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error) {
	greeting := false
	for _, member := range activity.MembersAdded {
		if member.ID != activity.Recipient.ID {
			greeting = true
			break
		}
	}
	if !greeting {
		return &domain.TurnResponse{}, nil
	}

	resp := &domain.TurnResponse{Replies: []domain.Reply{flows.WelcomeReply()}}
	err := b.runDialog(ctx, activity, nil, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// onMenuSelection answers an interactive submit from the role menu and
// records the chosen role on the user's state.
func (b *Bot) onMenuSelection(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error) {
	selection, err := domain.DecodeMenuSelection(activity.Value)
	if err != nil {
		return nil, err
	}

	reply, role := flows.HandleRoleSelection(*selection)
	resp := &domain.TurnResponse{Replies: []domain.Reply{reply}}

	ck := activity.ConversationKey()
	uk := activity.UserKey()
	err = b.sessions.WithLock(ctx, ck, func(ctx context.Context) error {
		state, err := b.sessions.LoadOrStart(ctx, ck)
		if err != nil {
			return err
		}
		user, err := b.sessions.LoadUser(ctx, uk)
		if err != nil {
			return err
		}
		if role != "" {
			user.Role = role
		}
		user.LastSeen = time.Now().UTC()
		return b.sessions.CommitTurn(ctx, ck, state, uk, user)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// onMessage feeds the user's text to the dialog stack.
func (b *Bot) onMessage(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error) {
	resp := &domain.TurnResponse{}
	if err := b.runDialog(ctx, activity, activity.Text, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// runDialog resumes the conversation's dialog stack under its lock,
// starting the main dialog when the stack is empty, and commits both
// state categories at the end of the turn.
func (b *Bot) runDialog(ctx context.Context, activity *domain.Activity, input any, resp *domain.TurnResponse) error {
	ck := activity.ConversationKey()
	uk := activity.UserKey()

	return b.sessions.WithLock(ctx, ck, func(ctx context.Context) error {
		state, err := b.sessions.LoadOrStart(ctx, ck)
		if err != nil {
			return err
		}
		if state.Depth() == 0 {
			if err := b.sequencer.Push(ctx, state, flows.MainDialogID, nil); err != nil {
				return err
			}
		}

		out, err := b.sequencer.Resume(ctx, state, input)
		if err != nil {
			return err
		}
		resp.Replies = append(resp.Replies, out.Replies...)

		user, err := b.sessions.LoadUser(ctx, uk)
		if err != nil {
			return err
		}
		user.LastSeen = time.Now().UTC()

		return b.sessions.CommitTurn(ctx, ck, state, uk, user)
	})
}
