// Package flows defines the bot's conversation flows: the top-level
// routing dialog, the document search dialog, and the role menu
// responses.
package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/flightdeck/adbot/pkg/dialog"
	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/ports"
)

// Dialog identifiers.
const (
	MainDialogID       = "main"
	SearchDialogID     = "search"
	searchSlotDialogID = "search.slot"
)

const (
	unconfiguredMsgText = "NOTE: CLU is not configured. To enable all capabilities, set CLU_ENDPOINT, CLU_API_KEY, CLU_PROJECT and CLU_DEPLOYMENT."
	welcomeMsgText      = "Welcome! What can I help you with today? \n Say something like \"Can i view a file called bae 146-140\""
	repromptMsgText     = "Do you have more documents you are searching for?"
	unavailableMsgText  = "Sorry, I'm having trouble understanding requests right now. Please try again in a moment."
)

// mainOptions restarts the main dialog with a different greeting the
// second time around.
type mainOptions struct {
	Reprompt string `json:"reprompt,omitempty"`
}

// Register adds every flow definition to the registry.
func Register(reg *dialog.Registry, recognizer ports.Recognizer) error {
	defs := []dialog.Definition{
		mainDefinition(recognizer),
		searchDefinition(),
		searchSlotDefinition(),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// mainDefinition is the top-level dialog: greet, route the utterance by
// intent, report the result, and loop.
func mainDefinition(recognizer ports.Recognizer) dialog.Definition {
	return dialog.Definition{
		ID:         MainDialogID,
		NewOptions: func() any { return &mainOptions{} },
		Steps: []dialog.Step{
			// Intro: greet, or warn that recognition is disabled.
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				if !recognizer.IsConfigured() {
					dc.SayText(unconfiguredMsgText)
					return dialog.Next(nil), nil
				}

				messageText := welcomeMsgText
				if opts := dc.Options().(*mainOptions); opts.Reprompt != "" {
					messageText = opts.Reprompt
				}
				return dialog.Prompt(domain.TextReply(messageText, domain.InputHintExpecting)), nil
			},
			// Act: recognize the utterance and route by top intent.
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				if !recognizer.IsConfigured() {
					// No recognizer; run the search path with an empty record.
					return dialog.Begin(SearchDialogID, &searchOptions{}), nil
				}

				utterance, _ := input.(string)
				rec, err := recognizer.Recognize(ctx, utterance)
				if err != nil {
					if errors.Is(err, domain.ErrRecognizerUnavailable) {
						dc.SayText(unavailableMsgText)
						return dialog.Next(nil), nil
					}
					var malformed *domain.MalformedResponseError
					if errors.As(err, &malformed) {
						dc.SayText(didntUnderstandText(domain.IntentNone))
						return dialog.Next(nil), nil
					}
					return dialog.Result{}, err
				}

				intent, _ := rec.TopIntent()
				switch intent {
				case domain.IntentFileName:
					// Seed the record with whatever entities the service found.
					record := domain.SearchRecordFromEntities(rec)
					return dialog.Begin(SearchDialogID, &searchOptions{Record: *record}), nil

				case domain.IntentEffectiveDate:
					dc.SayText("TODO: get Effective Date flow here")

				case domain.IntentIssue:
					dc.SayText("todo: get Issue flow here")

				default:
					dc.SayText(didntUnderstandText(intent))
				}
				return dialog.Next(nil), nil
			},
			// Final: report the search and loop with a follow-up greeting.
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				if record, ok := input.(*domain.SearchRecord); ok && record != nil {
					dc.SayText(fmt.Sprintf("I'll search for a document for a file name: %s", record.FileName))
				}
				return dialog.Replace(MainDialogID, &mainOptions{Reprompt: repromptMsgText}), nil
			},
		},
	}
}

func didntUnderstandText(intent domain.Intent) string {
	return fmt.Sprintf("Sorry, I didn't get that. Please try asking in a different way (intent was %s)", intent)
}
