// ABOUTME: Conversation creation call against the backend.
// ABOUTME: Returns the opaque conversation id the session caches for its lifetime.

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// conversationResponse is the JSON body returned by POST /conversations.
type conversationResponse struct {
	ID string `json:"id"`
}

// CreateConversation creates a new conversation on the backend and
// returns its id. Nothing is cached here; the caller owns the id's
// lifecycle.
func (c *Client) CreateConversation(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/conversations", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	authorize(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apiError(ErrConversationCreate, resp)
	}

	var conv conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if conv.ID == "" {
		return "", fmt.Errorf("%w: response carried no conversation id", ErrConversationCreate)
	}
	return conv.ID, nil
}
