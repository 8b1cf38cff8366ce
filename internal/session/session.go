// ABOUTME: In-memory session state: credential, conversation id, message log, progress.
// ABOUTME: Single source of truth for the presentation layer; pure mutations, no I/O.

package session

import (
	"fmt"
	"sync"
	"time"
)

// Origin identifies who authored a message.
type Origin string

const (
	OriginUser  Origin = "USER"
	OriginAgent Origin = "AGENT"
)

// Message is one entry in the chat log.
type Message struct {
	ID        string
	Origin    Origin
	Content   string
	CreatedAt time.Time
}

// Progress mirrors one realtime progress frame from the backend.
type Progress struct {
	Step    string `json:"step"`
	Details string `json:"details"`
}

// Store holds all mutable session state. Mutations are serialized by an
// internal mutex and take effect synchronously; readers always observe
// the latest completed mutation.
type Store struct {
	mu             sync.Mutex
	credential     string
	conversationID string
	messages       []Message
	ids            map[string]struct{}
	progress       *Progress
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// SetCredential stores the bearer token for subsequent authenticated calls.
func (s *Store) SetCredential(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = token
}

// ClearCredential removes the stored bearer token.
func (s *Store) ClearCredential() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
}

// Credential returns the stored bearer token, or "" when logged out.
func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// SetConversationID caches the active conversation id.
func (s *Store) SetConversationID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = id
}

// ConversationID returns the cached conversation id, or "" when none exists.
func (s *Store) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// AppendMessage appends msg to the log. Message ids must be unique; a
// duplicate id is a caller bug and panics.
func (s *Store) AppendMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[msg.ID]; exists {
		panic(fmt.Sprintf("session: duplicate message id %q", msg.ID))
	}
	s.ids[msg.ID] = struct{}{}
	s.messages = append(s.messages, msg)
}

// RemoveMessage deletes the message with the given id from the log.
// Removing an id that is not present is a no-op, so rollback of an
// optimistic message is always safe.
func (s *Store) RemoveMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[id]; !exists {
		return
	}
	delete(s.ids, id)
	for i, msg := range s.messages {
		if msg.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// Messages returns a copy of the message log in insertion order.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SetProgress replaces the transient progress indicator. Passing nil
// clears it.
func (s *Store) SetProgress(p *Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.progress = nil
		return
	}
	cp := *p
	s.progress = &cp
}

// Progress returns a copy of the current progress indicator, or nil when
// no task is in flight.
func (s *Store) Progress() *Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return nil
	}
	cp := *s.progress
	return &cp
}

// ResetConversationContext clears the conversation id, message log, and
// progress indicator. The credential is left untouched; logout handles
// it separately.
func (s *Store) ResetConversationContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = ""
	s.messages = nil
	s.ids = make(map[string]struct{})
	s.progress = nil
}
