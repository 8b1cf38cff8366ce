// ABOUTME: Per-task realtime subscription consuming progress frames over websocket.
// ABOUTME: Drives the session store through a strict state machine with supersession.

package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/sunspira/spira/internal/session"
)

// StepComplete is the backend's reserved step value marking the final
// frame of a task. Its details field carries the agent's answer.
const StepComplete = "完了"

// dialTimeout bounds the websocket handshake for a subscription.
const dialTimeout = 15 * time.Second

// Subscription failure categories.
var (
	ErrProtocolDecode = errors.New("malformed progress frame")
	ErrChannel        = errors.New("realtime channel failed")
)

// State is the subscription lifecycle state for the current task.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateCompleted
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Subscriber owns at most one live realtime channel at a time. Opening a
// subscription for a new task closes the previous channel first, and
// frames that belong to a superseded channel are discarded before they
// can touch session state.
type Subscriber struct {
	realtimeURL string
	store       *session.Store
	logger      *slog.Logger

	// OnUpdate is invoked for each intermediate progress frame and
	// OnStateChange on every lifecycle transition. Both must be set
	// before the first Open and are called outside the internal lock.
	OnUpdate      func(session.Progress)
	OnStateChange func(State, error)

	mu     sync.Mutex
	state  State
	gen    int
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscriber creates a subscriber that dials subscriptions under
// realtimeURL and applies progress to store.
func NewSubscriber(realtimeURL string, store *session.Store) *Subscriber {
	return &Subscriber{
		realtimeURL: strings.TrimSuffix(realtimeURL, "/"),
		store:       store,
		state:       StateIdle,
		logger:      slog.Default().With("component", "task"),
	}
}

// Open subscribes to progress for taskID. Any prior subscription is
// closed before the new channel is dialed. A dial failure leaves no
// channel open and is reported as ErrChannel.
func (s *Subscriber) Open(ctx context.Context, taskID string) error {
	s.Close()

	s.mu.Lock()
	s.state = StateConnecting
	s.mu.Unlock()
	s.notifyState(StateConnecting, nil)

	// The reader outlives the caller's request context: frames keep
	// arriving after Open returns, until the task finishes or Close runs.
	readCtx, cancel := context.WithCancel(context.Background())

	dialCtx, dialCancel := context.WithTimeout(ctx, dialTimeout)
	defer dialCancel()

	conn, _, err := websocket.Dial(dialCtx, s.subscribeURL(taskID), nil)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		err = fmt.Errorf("%w: %v", ErrChannel, err)
		s.notifyState(StateFailed, err)
		return err
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.conn = conn
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateStreaming
	s.mu.Unlock()

	s.store.SetProgress(&session.Progress{Step: "connected", Details: "waiting for the agent..."})
	s.logger.Debug("subscription opened", "task_id", taskID)
	s.notifyState(StateStreaming, nil)

	go s.readLoop(readCtx, gen, conn, taskID)
	return nil
}

// Close ends the current subscription, if any. It is idempotent and safe
// to call on a subscriber that never opened a channel. After Close no
// in-flight frame of the old channel can reach the session store.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.conn == nil {
		if s.state == StateConnecting || s.state == StateStreaming {
			s.state = StateClosed
		}
		s.mu.Unlock()
		return
	}
	s.gen++
	s.store.SetProgress(nil)
	s.state = StateClosed
	s.teardownLocked()
	s.mu.Unlock()
}

// State returns the subscription state for the current task.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until the current task's subscription reaches a terminal
// state or ctx is done, and returns the state at that point. Without an
// open subscription it returns immediately.
func (s *Subscriber) Wait(ctx context.Context) State {
	s.mu.Lock()
	done := s.done
	state := s.state
	s.mu.Unlock()

	if done == nil {
		return state
	}

	select {
	case <-ctx.Done():
	case <-done:
	}

	s.mu.Lock()
	state = s.state
	s.mu.Unlock()
	return state
}

func (s *Subscriber) subscribeURL(taskID string) string {
	return fmt.Sprintf("%s/tasks/%s/subscribe", s.realtimeURL, taskID)
}

// readLoop decodes inbound frames in arrival order until the task
// reaches a terminal state. gen identifies the channel this loop serves;
// once the subscriber moves on, every outcome here becomes a no-op.
func (s *Subscriber) readLoop(ctx context.Context, gen int, conn *websocket.Conn, taskID string) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.finishRead(gen, err)
			return
		}

		var ev session.Progress
		if err := json.Unmarshal(data, &ev); err != nil {
			s.fail(gen, fmt.Errorf("%w: %v", ErrProtocolDecode, err))
			return
		}

		if !s.apply(gen, taskID, ev) {
			return
		}
	}
}

// apply processes one decoded frame. It returns false when the loop must
// stop: the frame was terminal, or it belonged to a superseded channel.
func (s *Subscriber) apply(gen int, taskID string, ev session.Progress) bool {
	s.mu.Lock()
	if gen != s.gen || s.state != StateStreaming {
		s.mu.Unlock()
		return false
	}

	if ev.Step == StepComplete {
		s.store.AppendMessage(session.Message{
			ID:        uuid.New().String(),
			Origin:    session.OriginAgent,
			Content:   ev.Details,
			CreatedAt: time.Now(),
		})
		s.store.SetProgress(nil)
		s.state = StateCompleted
		s.teardownLocked()
		s.mu.Unlock()

		s.logger.Debug("task completed", "task_id", taskID)
		s.notifyState(StateCompleted, nil)
		return false
	}

	s.store.SetProgress(&ev)
	onUpdate := s.OnUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(ev)
	}
	return true
}

// fail ends the subscription in StateFailed and surfaces err.
func (s *Subscriber) fail(gen int, err error) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateStreaming {
		s.mu.Unlock()
		return
	}
	s.store.SetProgress(nil)
	s.state = StateFailed
	s.teardownLocked()
	s.mu.Unlock()

	s.logger.Warn("subscription failed", "error", err)
	s.notifyState(StateFailed, err)
}

// finishRead classifies a read error: a clean backend close becomes
// StateClosed (no message appended, no conclusion drawn about the job);
// anything else is a channel failure.
func (s *Subscriber) finishRead(gen int, err error) {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		s.mu.Lock()
		if gen != s.gen || s.state != StateStreaming {
			s.mu.Unlock()
			return
		}
		s.store.SetProgress(nil)
		s.state = StateClosed
		s.teardownLocked()
		s.mu.Unlock()
		s.notifyState(StateClosed, nil)
	default:
		s.fail(gen, fmt.Errorf("%w: %v", ErrChannel, err))
	}
}

// teardownLocked releases the channel resources and wakes waiters.
// Callers hold s.mu.
func (s *Subscriber) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.conn != nil {
		s.conn.Close(websocket.StatusNormalClosure, "")
		s.conn = nil
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

func (s *Subscriber) notifyState(state State, err error) {
	if s.OnStateChange != nil {
		s.OnStateChange(state, err)
	}
}
