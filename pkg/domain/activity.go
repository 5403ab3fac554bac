package domain

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Activity types understood by the dispatcher.
const (
	ActivityMessage            = "message"
	ActivityConversationUpdate = "conversationUpdate"
)

// Input hints attached to replies, mirroring what channels expect.
const (
	InputHintExpecting = "expectingInput"
	InputHintIgnoring  = "ignoringInput"
)

// ChannelAccount identifies a participant on a channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Activity is one inbound event from the channel: a user message, an
// interactive submit (Value set), or a conversation-update.
type Activity struct {
	Type         string           `json:"type"`
	ChannelID    string           `json:"channel_id"`
	Conversation ChannelAccount   `json:"conversation"`
	From         ChannelAccount   `json:"from"`
	Recipient    ChannelAccount   `json:"recipient"`
	Text         string           `json:"text,omitempty"`
	Value        map[string]any   `json:"value,omitempty"`
	MembersAdded []ChannelAccount `json:"members_added,omitempty"`
}

// ConversationKey returns the key of the conversation-scoped state for
// this activity.
func (a Activity) ConversationKey() ConversationKey {
	return ConversationKey{ChannelID: a.ChannelID, ConversationID: a.Conversation.ID}
}

// UserKey returns the key of the user-scoped state for this activity.
func (a Activity) UserKey() UserKey {
	return UserKey{ChannelID: a.ChannelID, UserID: a.From.ID}
}

// Attachment is an opaque rich-content blob already serialized by the
// shell (e.g. an adaptive card).
type Attachment struct {
	ContentType string          `json:"content_type"`
	Content     json.RawMessage `json:"content"`
}

// Reply is one outbound message produced during a turn.
type Reply struct {
	Text        string       `json:"text,omitempty"`
	InputHint   string       `json:"input_hint,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// TextReply builds a plain text reply with the given input hint.
func TextReply(text, hint string) Reply {
	return Reply{Text: text, InputHint: hint}
}

// TurnResponse is everything the dispatcher sends back for one turn, in
// emission order.
type TurnResponse struct {
	Replies []Reply `json:"replies"`
}

// MenuSelection is the structured payload of an interactive submit.
// Only the title is consumed.
type MenuSelection struct {
	Title string
}

// menuPayload mirrors the wire shape {action: {data: {title}}}.
type menuPayload struct {
	Action struct {
		Data struct {
			Title string `mapstructure:"title"`
		} `mapstructure:"data"`
	} `mapstructure:"action"`
}

// DecodeMenuSelection validates and decodes an interactive activity
// value. It fails with a PayloadDecodeError rather than tolerating a
// partially-understood payload.
func DecodeMenuSelection(value map[string]any) (*MenuSelection, error) {
	if len(value) == 0 {
		return nil, &PayloadDecodeError{Reason: "empty value"}
	}

	var p menuPayload
	if err := mapstructure.Decode(value, &p); err != nil {
		return nil, &PayloadDecodeError{Reason: "unexpected shape", Err: err}
	}

	title := strings.TrimSpace(p.Action.Data.Title)
	if title == "" {
		return nil, &PayloadDecodeError{Reason: "missing action.data.title"}
	}

	return &MenuSelection{Title: title}, nil
}
