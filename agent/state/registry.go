package state

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrConversationBusy rejects a turn while another turn for the
	// same conversation is in flight. Turns are rejected, never queued.
	ErrConversationBusy = errors.New("conversation has a turn in flight")
	// ErrConversationGone rejects a turn against a deleted session.
	ErrConversationGone = errors.New("conversation was deleted")
)

// Session pairs a conversation context with its turn lock. At most one
// turn may hold the lock; a second concurrent turn for the same id is
// rejected, not queued.
type Session struct {
	mu     sync.Mutex
	closed atomic.Bool
	ctx    *ConversationContext
}

// Context returns the owned conversation context. Callers must hold the
// turn lock (Begin) before mutating it.
func (s *Session) Context() *ConversationContext {
	return s.ctx
}

// Begin admits a turn. It fails with ErrConversationGone once deletion
// has been observed and with ErrConversationBusy while another turn for
// the same id is in flight.
func (s *Session) Begin() error {
	if s.closed.Load() {
		return ErrConversationGone
	}
	if !s.mu.TryLock() {
		return ErrConversationBusy
	}
	if s.closed.Load() {
		s.mu.Unlock()
		return ErrConversationGone
	}
	return nil
}

// End releases the turn lock.
func (s *Session) End() {
	s.mu.Unlock()
}

// Registry maps conversation ids to their sessions. It is the only
// state shared across conversations; everything else is owned by a
// single session. No persistence: conversations do not survive the
// process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session, 16),
		now:      time.Now,
	}
}

// GetOrCreate resolves the session for an id, creating it on first use.
// Creation is idempotent per id: concurrent first requests observe the
// same session because creation happens under the registry lock.
func (r *Registry) GetOrCreate(conversationID, userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[conversationID]; ok {
		return s
	}
	s := &Session{
		ctx: NewConversationContext(conversationID, userID, r.now()),
	}
	r.sessions[conversationID] = s
	return s
}

// Delete removes a conversation. Idempotent: deleting an unknown id is
// a no-op. An in-flight turn is not cancelled; it completes against the
// context it captured, which the registry no longer references.
func (r *Registry) Delete(conversationID string) {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return
	}
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if ok {
		s.closed.Store(true)
	}
}

// Len reports the number of live conversations. Observability only.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
