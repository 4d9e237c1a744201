// Package signals bridges asynchronous interrupt and suspend requests into
// the multiplexer loop.
//
// OS signals (SIGINT, SIGTSTP) and the equivalent keystrokes seen while the
// terminal is in raw mode are queued by Raise and applied by Drain between
// scheduler ticks, so a handler never races with rendering or input
// dispatch. The queue is bounded and Raise never blocks: when it is full the
// request is dropped and counted.
package signals
