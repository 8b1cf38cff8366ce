// Package chat composes the session store, the gateway client, and the
// progress subscriber into the operations the presentation layer calls:
// login, register, logout, and the send-message flow with its optimistic
// append and compensating rollback. The message log only ever contains
// messages the backend has accepted, or agent replies.
package chat
