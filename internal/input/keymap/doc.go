// Package keymap translates key events into what the multiplexer acts on.
//
// A Translator turns a key.Event into one of three actions:
//
//   - ActionBytes: the byte sequence a terminal program expects for the key
//   - ActionScroll: a scrollback delta, produced only by the local scroll keys
//   - ActionNone: nothing to do
//
// Named keys are looked up in a static table; every other character is
// encoded as UTF-8. CommandFor maps the same events to command tokens for
// use while the multiplexer is in command mode.
package keymap
