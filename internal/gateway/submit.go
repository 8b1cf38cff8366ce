// ABOUTME: Message submission call that turns user text into a backend job.
// ABOUTME: The backend acknowledges acceptance with 202 and a task id.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// submitRequest is the JSON body for POST /conversations/{id}/messages.
type submitRequest struct {
	Content string `json:"content"`
}

// submitResponse is the acceptance body carrying the async job's id.
type submitResponse struct {
	TaskID string `json:"task_id"`
}

// SubmitMessage submits content to the conversation and returns the task
// id of the asynchronous job. The backend signals acceptance, not
// completion, with 202; any other status is a submission failure.
func (c *Client) SubmitMessage(ctx context.Context, token, conversationID, content string) (string, error) {
	body, err := json.Marshal(submitRequest{Content: content})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/conversations/%s/messages", c.baseURL, conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
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

	if resp.StatusCode != http.StatusAccepted {
		return "", apiError(ErrSubmissionRejected, resp)
	}

	var accepted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if accepted.TaskID == "" {
		return "", fmt.Errorf("%w: response carried no task id", ErrSubmissionRejected)
	}
	return accepted.TaskID, nil
}
