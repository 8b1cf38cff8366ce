// ABOUTME: Orchestrates the send-message flow across store, gateway, and subscriber.
// ABOUTME: Owns the auth lifecycle: login, register, logout, credential bootstrap.

package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/sunspira/spira/internal/gateway"
	"github.com/sunspira/spira/internal/session"
	"github.com/sunspira/spira/internal/task"
)

// credentialKey is the fixed name the bearer token is persisted under.
const credentialKey = "authToken"

// Local preconditions for Send. Neither causes any observable state change.
var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrNotAuthenticated = errors.New("not logged in")
)

// API covers the backend calls the controller issues.
type API interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	CreateConversation(ctx context.Context, token string) (string, error)
	SubmitMessage(ctx context.Context, token, conversationID, content string) (string, error)
}

// ProgressSubscriber manages the realtime channel for an accepted task.
type ProgressSubscriber interface {
	Open(ctx context.Context, taskID string) error
	Close()
}

// CredentialStore persists the bearer token across process restarts.
type CredentialStore interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// Controller composes the session store, the API client, and the
// progress subscriber into the user-facing chat operations.
type Controller struct {
	store  *session.Store
	api    API
	sub    ProgressSubscriber
	creds  CredentialStore
	logger *slog.Logger

	convFlight singleflight.Group
}

// NewController wires the chat operations together. creds may be nil
// when credential persistence is unavailable.
func NewController(store *session.Store, api API, sub ProgressSubscriber, creds CredentialStore) *Controller {
	return &Controller{
		store:  store,
		api:    api,
		sub:    sub,
		creds:  creds,
		logger: slog.Default().With("component", "chat"),
	}
}

// Init loads the persisted credential, discarding tokens that are
// already expired so the user is prompted to log in again instead of
// watching every call fail.
func (c *Controller) Init(ctx context.Context) {
	if c.creds == nil {
		return
	}
	token, err := c.creds.Get(ctx, credentialKey)
	if err != nil {
		c.logger.Warn("reading persisted credential", "error", err)
		return
	}
	if token == "" {
		return
	}
	if !gateway.TokenUsable(token) {
		c.logger.Info("discarding expired credential")
		if err := c.creds.Delete(ctx, credentialKey); err != nil {
			c.logger.Warn("deleting expired credential", "error", err)
		}
		return
	}
	c.store.SetCredential(token)
}

// Login exchanges credentials for a token, stores it in the session, and
// persists it.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	token, err := c.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	c.store.SetCredential(token)
	if c.creds != nil {
		if err := c.creds.Put(ctx, credentialKey, token); err != nil {
			c.logger.Warn("persisting credential", "error", err)
		}
	}
	return nil
}

// Register creates an account and logs straight in on success.
func (c *Controller) Register(ctx context.Context, email, password string) error {
	if err := c.api.Register(ctx, email, password); err != nil {
		return err
	}
	return c.Login(ctx, email, password)
}

// Logout tears down the chat context locally: the subscription is
// closed, the credential dropped from session and persistence, and the
// conversation state reset. The backend is not told anything.
func (c *Controller) Logout(ctx context.Context) {
	c.sub.Close()
	c.store.ClearCredential()
	c.store.ResetConversationContext()
	if c.creds != nil {
		if err := c.creds.Delete(ctx, credentialKey); err != nil {
			c.logger.Warn("removing persisted credential", "error", err)
		}
	}
}

// Send runs the full send-message flow: optimistic append, lazy
// conversation creation, submission, and subscription open. Any failure
// before the channel is open rolls the optimistic message back and
// clears the progress indicator, leaving the log exactly as before.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	token := c.store.Credential()
	if token == "" {
		return ErrNotAuthenticated
	}

	c.store.SetProgress(&session.Progress{Step: "sending", Details: ""})

	msg := session.Message{
		ID:        uuid.New().String(),
		Origin:    session.OriginUser,
		Content:   text,
		CreatedAt: time.Now(),
	}
	c.store.AppendMessage(msg)

	conversationID, err := c.ensureConversation(ctx, token)
	if err != nil {
		c.rollback(msg.ID)
		return err
	}

	taskID, err := c.api.SubmitMessage(ctx, token, conversationID, text)
	if err != nil {
		c.rollback(msg.ID)
		return err
	}

	if err := c.sub.Open(ctx, taskID); err != nil {
		c.rollback(msg.ID)
		return err
	}
	return nil
}

// ensureConversation returns the cached conversation id or creates one.
// Concurrent callers share a single in-flight creation request, so a
// rapid double submit cannot create two conversations.
func (c *Controller) ensureConversation(ctx context.Context, token string) (string, error) {
	if id := c.store.ConversationID(); id != "" {
		return id, nil
	}

	v, err, _ := c.convFlight.Do("conversation", func() (any, error) {
		// A previous flight may have stored the id between our check
		// and this call.
		if id := c.store.ConversationID(); id != "" {
			return id, nil
		}
		id, err := c.api.CreateConversation(ctx, token)
		if err != nil {
			return nil, err
		}
		c.store.SetConversationID(id)
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// rollback undoes the optimistic append after a failed send.
func (c *Controller) rollback(msgID string) {
	c.store.RemoveMessage(msgID)
	c.store.SetProgress(nil)
}

// UserMessage maps any chat-flow error to the string shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return "Type a message first."
	case errors.Is(err, ErrNotAuthenticated):
		return "Log in before sending messages."
	case errors.Is(err, task.ErrProtocolDecode):
		return "Received a malformed update from the server."
	case errors.Is(err, task.ErrChannel):
		return "Realtime updates failed."
	}
	return gateway.UserMessage(err)
}
