package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/flightdeck/adbot/internal/logging"
	"github.com/flightdeck/adbot/pkg/domain"
)

// Sequencer drives waterfall dialogs over a conversation's dialog stack.
// It is stateless between calls; all progress lives in the
// ConversationState the caller passes in.
type Sequencer struct {
	reg      *Registry
	maxDepth int
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithMaxDepth overrides the dialog stack depth bound.
func WithMaxDepth(n int) SequencerOption {
	return func(s *Sequencer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithHooks installs lifecycle callbacks fired on dialog push and pop.
func WithHooks(h domain.LifecycleHooks) SequencerOption {
	return func(s *Sequencer) { s.hooks = h }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) SequencerOption {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSequencer creates a sequencer over the given registry.
func NewSequencer(reg *Registry, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		reg:      reg,
		maxDepth: DefaultMaxDepth,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome reports where a Resume call left the conversation.
type Outcome struct {
	// Replies accumulated by steps during this turn, in emission order.
	Replies []domain.Reply
	// Waiting is true when the top dialog suspended on a prompt and the
	// next inbound message should be fed back into Resume.
	Waiting bool
	// Done is true when the stack emptied; Result carries the final
	// dialog's end value, if any.
	Done bool
	// NoActive is true when Resume was called on an empty stack.
	NoActive bool
	// Result is the value returned by the last dialog to end, when the
	// stack emptied.
	Result any
}

// Push starts dialogID on top of the stack without running any steps.
// Options are serialized into the new instance.
func (s *Sequencer) Push(ctx context.Context, state *domain.ConversationState, dialogID string, options any) error {
	if _, ok := s.reg.Lookup(dialogID); !ok {
		return fmt.Errorf("dialog %q: %w", dialogID, domain.ErrUnknownDialog)
	}
	if err := push(state, dialogID, options, s.maxDepth); err != nil {
		return err
	}
	s.fireDialogPush(ctx, dialogID, state.Depth())
	return nil
}

// Resume advances the stack until a step prompts, the stack empties, or a
// step fails. On the first call after a Prompt the suspended step's index
// is skipped and input is delivered to the following step.
func (s *Sequencer) Resume(ctx context.Context, state *domain.ConversationState, input any) (*Outcome, error) {
	if state.Depth() == 0 {
		return &Outcome{NoActive: true}, nil
	}

	out := &Outcome{}
	prev := input

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := state.Top()
		if top == nil {
			out.Done = true
			return out, nil
		}

		def, ok := s.reg.Lookup(top.DialogID)
		if !ok {
			return nil, fmt.Errorf("dialog %q: %w", top.DialogID, domain.ErrUnknownDialog)
		}

		idx := top.StepIndex
		if top.Awaiting {
			idx++
		}
		if idx >= len(def.Steps) {
			return nil, fmt.Errorf("dialog %q: %w", top.DialogID, domain.ErrSequencerExhausted)
		}

		opts, err := decodeOptions(def, top.Options)
		if err != nil {
			return nil, fmt.Errorf("dialog %q options: %w", top.DialogID, err)
		}

		dc := &Context{options: opts, replies: &out.Replies}
		res, err := def.Steps[idx](ctx, dc, prev)
		if err != nil {
			return nil, fmt.Errorf("dialog %q step %d: %w", top.DialogID, idx, err)
		}

		// Steps may mutate their options; persist them back before the
		// result moves the stack.
		encoded, err := marshalValue(opts)
		if err != nil {
			return nil, fmt.Errorf("dialog %q options: %w", top.DialogID, err)
		}
		top.Options = encoded

		switch res.kind {
		case kindNext:
			top.StepIndex = idx + 1
			top.Awaiting = false
			top.Result, err = marshalValue(res.value)
			if err != nil {
				return nil, err
			}
			prev = res.value

		case kindPrompt:
			out.Replies = append(out.Replies, res.reply)
			top.StepIndex = idx
			top.Awaiting = true
			out.Waiting = true
			s.logger.Debug("dialog suspended", "dialog", top.DialogID, "step", idx)
			return out, nil

		case kindBegin:
			if _, ok := s.reg.Lookup(res.dialogID); !ok {
				return nil, fmt.Errorf("dialog %q: %w", res.dialogID, domain.ErrUnknownDialog)
			}
			top.StepIndex = idx
			top.Awaiting = true
			if err := push(state, res.dialogID, res.options, s.maxDepth); err != nil {
				return nil, err
			}
			s.fireDialogPush(ctx, res.dialogID, state.Depth())
			prev = nil

		case kindEnd:
			ended, err := pop(state)
			if err != nil {
				return nil, err
			}
			s.fireDialogPop(ctx, ended.DialogID, state.Depth())
			if state.Depth() == 0 {
				out.Done = true
				out.Result = res.value
				return out, nil
			}
			prev = res.value

		case kindReplace:
			if _, ok := s.reg.Lookup(res.dialogID); !ok {
				return nil, fmt.Errorf("dialog %q: %w", res.dialogID, domain.ErrUnknownDialog)
			}
			replaced := top.DialogID
			if err := replaceTop(state, res.dialogID, res.options); err != nil {
				return nil, err
			}
			s.fireDialogPop(ctx, replaced, state.Depth()-1)
			s.fireDialogPush(ctx, res.dialogID, state.Depth())
			prev = nil

		default:
			return nil, fmt.Errorf("dialog %q step %d: unknown result kind %d", top.DialogID, idx, res.kind)
		}
	}
}

func decodeOptions(def Definition, raw json.RawMessage) (any, error) {
	if def.NewOptions == nil {
		if len(raw) == 0 {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	opts := def.NewOptions()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func (s *Sequencer) fireDialogPush(ctx context.Context, dialogID string, depth int) {
	if s.hooks.OnDialogPush != nil {
		s.hooks.OnDialogPush(ctx, &domain.DialogEvent{DialogID: dialogID, Depth: depth})
	}
}

func (s *Sequencer) fireDialogPop(ctx context.Context, dialogID string, depth int) {
	if s.hooks.OnDialogPop != nil {
		s.hooks.OnDialogPop(ctx, &domain.DialogEvent{DialogID: dialogID, Depth: depth})
	}
}
