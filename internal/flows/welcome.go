package flows

import (
	_ "embed"
	"encoding/json"

	"github.com/flightdeck/adbot/pkg/domain"
)

//go:embed cards/welcomeCard.json
var welcomeCardJSON []byte

const adaptiveCardContentType = "application/vnd.microsoft.card.adaptive"

// WelcomeReply builds the greeting sent when a new member joins the
// conversation: the adaptive welcome card with the role menu.
func WelcomeReply() domain.Reply {
	return domain.Reply{
		Text:      "Welcome!",
		InputHint: domain.InputHintIgnoring,
		Attachments: []domain.Attachment{{
			ContentType: adaptiveCardContentType,
			Content:     json.RawMessage(welcomeCardJSON),
		}},
	}
}
