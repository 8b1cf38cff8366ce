// Package session holds the client's in-memory conversation state: the
// credential token, the active conversation id, the ordered message log,
// and the transient progress indicator. All mutation goes through the
// Store's methods; it performs no I/O of its own.
package session
