// Package mux is the multiplexer core: the ordered session registry, focus,
// the passthrough/command input state machine, the scrollback view and the
// throttled session titles.
//
// A Multiplexer is driven by a single loop. Dispatch routes one key event,
// CurrentFrame produces what should be drawn, Reconcile drops sessions whose
// process has exited and StatusLine renders the session list. None of these
// block; the only blocking step is the index prompt behind the Prompter
// used by the select command.
//
// A Multiplexer is not safe for concurrent use. Asynchronous requests such
// as OS signals reach it through ToggleCancel and Forward, called by the
// loop between ticks.
package mux
