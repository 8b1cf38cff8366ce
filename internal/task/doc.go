// Package task manages the realtime progress subscription for one
// asynchronous backend job at a time.
//
// # State machine
//
// A subscription moves through
//
//	Idle -> Connecting -> Streaming -> Completed | Failed | Closed
//
// Frames are processed strictly in arrival order. An intermediate frame
// updates the session's progress indicator; the reserved terminal step
// appends the agent's answer to the message log and ends the task. A
// malformed frame or transport error fails the task; a clean backend
// close without a terminal frame ends it without an answer.
//
// # Single channel invariant
//
// The subscriber holds at most one live channel. Open closes any prior
// channel before dialing, and a generation counter guarantees that
// frames still in flight for a superseded channel never mutate state.
package task
