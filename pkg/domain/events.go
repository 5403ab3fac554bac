package domain

import (
	"context"
	"time"
)

// TurnEvent describes one dispatcher turn.
type TurnEvent struct {
	ChannelID      string
	ConversationID string
	ActivityType   string
	Duration       time.Duration // set on turn end
	Err            error         // set on turn end when the turn failed
}

// DialogEvent describes a dialog stack transition.
type DialogEvent struct {
	DialogID string
	Depth    int // stack depth after the transition
}

// LifecycleHooks are optional observability callbacks fired by the
// dispatcher and the step sequencer. Nil hooks are skipped. Hooks run
// synchronously on the turn path and must be cheap.
type LifecycleHooks struct {
	OnTurnStart  func(context.Context, *TurnEvent)
	OnTurnEnd    func(context.Context, *TurnEvent)
	OnDialogPush func(context.Context, *DialogEvent)
	OnDialogPop  func(context.Context, *DialogEvent)
}
