package flows

import (
	"context"
	"fmt"

	"github.com/flightdeck/adbot/pkg/dialog"
	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/slotfill"
)

const (
	whichInfoMsgText            = "Which information do you have?\n\n1. File Name\n2. AD Reference Number\n3. Aircraft Serial Number, AD Title (Problem)\n4. Aircraft Type, AD Title (Problem)"
	fileNameMsgText             = "What is the name of the file you're looking for? Please provide it below."
	adTitleMsgText              = "Please enter the AD title for which you need information."
	adReferenceNumberMsgText    = "Can you provide me the AD Reference Number associated with the information you're looking for?"
	aircraftSerialNumberMsgText = "Could you please provide the Aircraft Serial Number? (including conduct number)"
	aircraftTypeMsgText         = "Please type in your Aircraft type."
	holderMsgText               = "Please provide the aircraft company's name"
)

// searchOptions carries the partially-filled record through the search
// dialog and its slot-collection child.
type searchOptions struct {
	Record   domain.SearchRecord `json:"record"`
	Category slotfill.Category   `json:"category,omitempty"`
	Pending  slotfill.Field      `json:"pending,omitempty"`
}

func promptFor(f slotfill.Field) domain.Reply {
	var text string
	switch f {
	case slotfill.FieldFileName:
		text = fileNameMsgText
	case slotfill.FieldADTitle:
		text = adTitleMsgText
	case slotfill.FieldADReferenceNumber:
		text = adReferenceNumberMsgText
	case slotfill.FieldAircraftSerialNumber:
		text = aircraftSerialNumberMsgText
	case slotfill.FieldAircraftType:
		text = aircraftTypeMsgText
	default:
		text = fmt.Sprintf("Please provide the %s.", f)
	}
	return domain.TextReply(text, domain.InputHintExpecting)
}

// searchDefinition collects the information category, then hands slot
// collection to the slot child dialog and returns the filled record.
func searchDefinition() dialog.Definition {
	return dialog.Definition{
		ID:         SearchDialogID,
		NewOptions: func() any { return &searchOptions{} },
		Steps: []dialog.Step{
			// Ask which kind of identifier the user has.
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				return dialog.Prompt(domain.TextReply(whichInfoMsgText, domain.InputHintExpecting)), nil
			},
			// Resolve the category and start slot collection.
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				opts := dc.Options().(*searchOptions)
				text, _ := input.(string)
				cat, ok := slotfill.ParseCategory(text)
				if !ok {
					return dialog.End(nil), nil
				}
				opts.Category = cat
				return dialog.Begin(searchSlotDialogID, &searchOptions{
					Record:   opts.Record,
					Category: cat,
				}), nil
			},
			// The child returns the completed record (or nil).
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				return dialog.End(input), nil
			},
		},
	}
}

// searchSlotDefinition asks for the category's missing slots one at a
// time, restarting itself after each answer until the record is
// complete.
func searchSlotDefinition() dialog.Definition {
	return dialog.Definition{
		ID:         searchSlotDialogID,
		NewOptions: func() any { return &searchOptions{} },
		Steps: []dialog.Step{
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				opts := dc.Options().(*searchOptions)
				field, done := slotfill.Next(&opts.Record, opts.Category)
				if done {
					return dialog.End(&opts.Record), nil
				}
				opts.Pending = field
				return dialog.Prompt(promptFor(field)), nil
			},
			func(ctx context.Context, dc *dialog.Context, input any) (dialog.Result, error) {
				opts := dc.Options().(*searchOptions)
				text, _ := input.(string)
				if opts.Pending != slotfill.FieldNone {
					slotfill.Set(&opts.Record, opts.Pending, text)
					opts.Pending = slotfill.FieldNone
				}
				return dialog.Replace(searchSlotDialogID, opts), nil
			},
		},
	}
}
