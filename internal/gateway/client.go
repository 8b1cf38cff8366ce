// ABOUTME: HTTP client for the agent backend's REST API.
// ABOUTME: Covers registration, login, conversation creation, and message submission.

package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response body is read when
// extracting the backend-supplied detail string.
const maxErrorBody = 1 << 20

// Client communicates with the backend HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// errorDetail is the JSON error body the backend returns on failure.
type errorDetail struct {
	Detail string `json:"detail"`
}

// apiError builds an *APIError from a failed response, extracting the
// backend's detail string when the body carries one.
func apiError(kind error, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload errorDetail
	_ = json.Unmarshal(body, &payload)

	return &APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Detail:     payload.Detail,
	}
}

// authorize sets the bearer token header on req.
func authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}
