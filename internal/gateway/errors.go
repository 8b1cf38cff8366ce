// ABOUTME: Error taxonomy for backend API failures.
// ABOUTME: APIError carries the backend detail and unwraps to a category sentinel.

package gateway

import (
	"errors"
	"fmt"
)

// Failure categories. Callers classify with errors.Is.
var (
	ErrAuthFailed         = errors.New("authentication failed")
	ErrConversationCreate = errors.New("conversation creation failed")
	ErrSubmissionRejected = errors.New("message submission rejected")
)

// APIError describes a backend call the server rejected. Detail is the
// backend-supplied human-readable reason, when the response carried one.
type APIError struct {
	Kind       error
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Kind }

// UserMessage returns the string to show the user for err: the backend
// detail when present, otherwise a generic message for the category.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	switch {
	case errors.Is(err, ErrAuthFailed):
		return "Authentication failed."
	case errors.Is(err, ErrConversationCreate):
		return "Could not create a conversation."
	case errors.Is(err, ErrSubmissionRejected):
		return "Could not send the message."
	}
	return "Something went wrong. Please try again."
}
