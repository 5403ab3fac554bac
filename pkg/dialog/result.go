package dialog

import "github.com/flightdeck/adbot/pkg/domain"

// resultKind discriminates the step-result union.
type resultKind int

const (
	kindNext resultKind = iota
	kindPrompt
	kindBegin
	kindEnd
	kindReplace
)

// Result is the explicit outcome of one waterfall step. Steps build one
// with the constructors below; the sequencer switches on it.
type Result struct {
	kind     resultKind
	value    any
	reply    domain.Reply
	dialogID string
	options  any
}

// Next advances to the following step in the same dialog. v becomes the
// next step's input.
func Next(v any) Result {
	return Result{kind: kindNext, value: v}
}

// Prompt emits a reply and suspends the dialog until the next turn. The
// raw user input of that turn is delivered to the step after this one.
func Prompt(reply domain.Reply) Result {
	return Result{kind: kindPrompt, reply: reply}
}

// Begin pushes a child dialog. When the child later ends, its result is
// delivered to the step after the one that issued Begin.
func Begin(dialogID string, options any) Result {
	return Result{kind: kindBegin, dialogID: dialogID, options: options}
}

// End pops the current dialog, delivering v to the parent (or to the
// turn outcome when this was the last dialog on the stack).
func End(v any) Result {
	return Result{kind: kindEnd, value: v}
}

// Replace restarts the named dialog in place at step zero.
func Replace(dialogID string, options any) Result {
	return Result{kind: kindReplace, dialogID: dialogID, options: options}
}
