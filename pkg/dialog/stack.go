package dialog

import (
	"encoding/json"
	"fmt"

	"github.com/flightdeck/adbot/pkg/domain"
)

// DefaultMaxDepth bounds the dialog stack. Dialogs do not legitimately
// nest anywhere near this deep; hitting the bound means a begin/replace
// loop.
const DefaultMaxDepth = 32

// marshalValue encodes a step-provided value for persistence. A nil
// value stays nil so empty options round-trip as absent.
func marshalValue(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode dialog value: %w", err)
	}
	return data, nil
}

// push appends a fresh instance for dialogID, enforcing the depth bound.
func push(state *domain.ConversationState, dialogID string, options any, maxDepth int) error {
	if len(state.Stack) >= maxDepth {
		return fmt.Errorf("push %q: %w", dialogID, domain.ErrStackOverflow)
	}
	opts, err := marshalValue(options)
	if err != nil {
		return err
	}
	state.Stack = append(state.Stack, domain.DialogInstance{DialogID: dialogID, Options: opts})
	return nil
}

// pop removes and returns the top instance. Popping an empty stack is a
// programming error, never a silent default.
func pop(state *domain.ConversationState) (domain.DialogInstance, error) {
	if len(state.Stack) == 0 {
		return domain.DialogInstance{}, domain.ErrEmptyStack
	}
	top := state.Stack[len(state.Stack)-1]
	state.Stack = state.Stack[:len(state.Stack)-1]
	return top, nil
}

// replaceTop restarts dialogID in place of the current top instance.
func replaceTop(state *domain.ConversationState, dialogID string, options any) error {
	if len(state.Stack) == 0 {
		return domain.ErrEmptyStack
	}
	opts, err := marshalValue(options)
	if err != nil {
		return err
	}
	state.Stack[len(state.Stack)-1] = domain.DialogInstance{DialogID: dialogID, Options: opts}
	return nil
}
