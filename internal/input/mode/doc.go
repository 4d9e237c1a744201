// Package mode implements the multiplexer's two input modes.
//
// In Passthrough mode keystrokes go to the focused session. In Command mode
// they are read as multiplexer commands. The only way between the two is
// the cancel event, described by a fixed transition table:
//
//	Passthrough -> Command      no side effect
//	Command     -> Passthrough  emit one interrupt to the focused session
//
// The Machine applies the table and reports the Effect; the caller performs
// it. Focus changes and new sessions return to Passthrough through Reset,
// which has no side effect.
//
// A Machine is not safe for concurrent use. The multiplexer loop is its only
// mutator.
package mode
