// Package credstore persists the credential token under a fixed name in
// a local SQLite database, surviving process restarts.
package credstore
