package domain

import (
	"encoding/json"
	"time"
)

// ConversationKey identifies the conversation-scoped state blob.
type ConversationKey struct {
	ChannelID      string
	ConversationID string
}

func (k ConversationKey) String() string {
	return k.ChannelID + ":" + k.ConversationID
}

// UserKey identifies the user-scoped state blob.
type UserKey struct {
	ChannelID string
	UserID    string
}

func (k UserKey) String() string {
	return k.ChannelID + ":" + k.UserID
}

// DialogInstance is one activation frame on the dialog stack.
//
// StepIndex is the index of the step that last ran (or 0 for a fresh
// instance). Awaiting marks an instance that suspended — either waiting
// for user input or for a child dialog's result — so that resumption
// delivers the next input to StepIndex+1 while the persisted index
// itself stays on the step that suspended.
//
// Options and Result are kept as raw JSON so that a round trip through
// any store reproduces them byte for byte.
type DialogInstance struct {
	DialogID  string          `json:"dialog_id"`
	StepIndex int             `json:"step_index"`
	Awaiting  bool            `json:"awaiting,omitempty"`
	Options   json.RawMessage `json:"options,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// ConversationState is the per-conversation persisted record. The last
// element of Stack is the active dialog.
type ConversationState struct {
	Stack []DialogInstance `json:"stack"`
}

// NewConversationState returns an empty state with no active dialog.
func NewConversationState() *ConversationState {
	return &ConversationState{}
}

// Depth returns the number of active dialog instances.
func (s *ConversationState) Depth() int {
	return len(s.Stack)
}

// Top returns the active (innermost) dialog instance, or nil when the
// stack is empty.
func (s *ConversationState) Top() *DialogInstance {
	if len(s.Stack) == 0 {
		return nil
	}
	return &s.Stack[len(s.Stack)-1]
}

// UserState is the user-scoped persisted record. It is saved alongside
// the conversation state at the end of every turn.
type UserState struct {
	// Role is the job title the user picked from the role menu, if any.
	Role string `json:"role,omitempty"`

	LastSeen time.Time `json:"last_seen,omitzero"`
}

// NewUserState returns an empty user record.
func NewUserState() *UserState {
	return &UserState{}
}
