// Package dialog implements the waterfall dialog engine: a registry of
// step-list definitions and a sequencer that drives a per-conversation
// dialog stack, suspending on prompts and resuming on the next turn.
package dialog
