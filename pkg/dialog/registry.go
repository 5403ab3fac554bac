package dialog

import (
	"context"
	"fmt"

	"github.com/flightdeck/adbot/pkg/domain"
)

// Context is the per-activation view a step gets of its dialog: the
// decoded options and a buffer for intermediate replies. A step that
// wants to end the turn with a question uses Prompt instead of Say.
type Context struct {
	options any
	replies *[]domain.Reply
}

// Options returns the dialog's decoded options value, as produced by the
// definition's NewOptions factory. Mutations are persisted when the step
// returns.
func (c *Context) Options() any {
	return c.options
}

// Say queues a reply without suspending the dialog.
func (c *Context) Say(reply domain.Reply) {
	*c.replies = append(*c.replies, reply)
}

// SayText queues a plain text reply the user is not expected to answer.
func (c *Context) SayText(text string) {
	c.Say(domain.TextReply(text, domain.InputHintIgnoring))
}

// Step is one stage of a dialog's waterfall. input is the previous
// step's value: the raw user text after a Prompt, the child's result
// after a Begin, or whatever the preceding step passed to Next.
type Step func(ctx context.Context, dc *Context, input any) (Result, error)

// Definition is a dialog: an identifier and a fixed ordered step list.
// NewOptions, when set, returns the value persisted options are decoded
// into; dialogs without options may leave it nil.
type Definition struct {
	ID         string
	Steps      []Step
	NewOptions func() any
}

// Registry maps dialog identifiers to definitions. It replaces subtype
// dispatch: the stack looks definitions up by ID at push and resume time.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. Definitions are fixed at startup;
// duplicate or stepless registrations are programming errors.
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("dialog definition requires an ID")
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("dialog %q has no steps", def.ID)
	}
	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("dialog %q already registered", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	def, ok := r.defs[id]
	return def, ok
}
