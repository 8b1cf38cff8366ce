// ABOUTME: Registration and login calls against the auth gateway.
// ABOUTME: Login is form-encoded per the backend's token endpoint contract.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// registerRequest is the JSON body for POST /register.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the JSON body returned by a successful login.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Register creates a new account. Any non-2xx response is an
// authentication failure carrying the backend detail.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body, err := json.Marshal(registerRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(ErrAuthFailed, resp)
	}
	return nil
}

// Login exchanges credentials for a bearer token. The endpoint expects a
// form-encoded body with username and password fields.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apiError(ErrAuthFailed, resp)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: response carried no access token", ErrAuthFailed)
	}
	return tok.AccessToken, nil
}
