// Package gateway is the HTTP client for the agent backend's REST API.
//
// # Endpoints
//
// The client covers the four calls the interactive session needs:
//
//   - POST /register - create an account (JSON email/password)
//   - POST /login - exchange credentials for a bearer token (form-encoded)
//   - POST /conversations - create a conversation (authenticated)
//   - POST /conversations/{id}/messages - submit a message; the backend
//     accepts the asynchronous job with 202 and a task_id
//
// Authenticated calls send "Authorization: Bearer <token>".
//
// # Errors
//
// Server-side rejections are returned as *APIError values that unwrap to
// a category sentinel (ErrAuthFailed, ErrConversationCreate,
// ErrSubmissionRejected) and carry the backend's detail string when the
// error body had one. UserMessage derives the user-visible text.
package gateway
