package ports

import (
	"context"

	"github.com/flightdeck/adbot/pkg/domain"
)

// StateStore persists the two independent state categories: the
// conversation-scoped dialog stack and the user-scoped profile.
// Load methods return domain.ErrStateNotFound when no blob exists.
type StateStore interface {
	LoadConversation(ctx context.Context, key domain.ConversationKey) (*domain.ConversationState, error)
	SaveConversation(ctx context.Context, key domain.ConversationKey, state *domain.ConversationState) error
	DeleteConversation(ctx context.Context, key domain.ConversationKey) error

	// ListConversations returns the string form of all stored
	// conversation keys. Used by operational tooling.
	ListConversations(ctx context.Context) ([]string, error)

	LoadUser(ctx context.Context, key domain.UserKey) (*domain.UserState, error)
	SaveUser(ctx context.Context, key domain.UserKey, state *domain.UserState) error
}

// TurnCommitter is an optional extension for stores that can write both
// state categories in one atomic commit. The session manager prefers it
// over two sequential saves whenever the store implements it.
type TurnCommitter interface {
	SaveTurn(ctx context.Context,
		ck domain.ConversationKey, cs *domain.ConversationState,
		uk domain.UserKey, us *domain.UserState) error
}
