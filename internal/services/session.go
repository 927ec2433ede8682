package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rodrigopasa/launchajato/internal/models"
)

// DefaultSessionTTL is how long an idle chat session survives
const DefaultSessionTTL = 30 * time.Minute

// SessionStore maps phone numbers to chat sessions.
// Sessions are handed out as copies; Save writes a copy back (last write wins).
type SessionStore interface {
	GetOrCreate(phone string) *models.ChatSession
	Save(session *models.ChatSession)
	Delete(phone string)
	Sweep() int
	Count() int
}

// SessionManager is the in-memory SessionStore
type SessionManager struct {
	sessions   map[string]*models.ChatSession
	mu         sync.Mutex
	sessionTTL time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// SessionOption configures a SessionManager
type SessionOption func(*SessionManager)

// WithSessionClock overrides the clock used for activity and expiry
func WithSessionClock(now func() time.Time) SessionOption {
	return func(sm *SessionManager) { sm.now = now }
}

// WithSessionTTL overrides the inactivity timeout
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(sm *SessionManager) { sm.sessionTTL = ttl }
}

// NewSessionManager creates a new session manager
func NewSessionManager(logger zerolog.Logger, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		sessions:   make(map[string]*models.ChatSession),
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		logger:     logger.With().Str("component", "sessions").Logger(),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// GetOrCreate returns the session for phone, creating one in the initial
// state if none exists or the stored one outlived the TTL. LastActivity is
// always refreshed.
func (sm *SessionManager) GetOrCreate(phone string) *models.ChatSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	session, exists := sm.sessions[phone]
	if exists && session.LastActivity.Before(now.Add(-sm.sessionTTL)) {
		sm.logger.Debug().Str("phone", phone).Msg("chat session expired")
		exists = false
	}
	if !exists {
		session = models.NewChatSession(phone, now)
		sm.sessions[phone] = session
		sm.logger.Debug().Str("phone", phone).Msg("chat session created")
	}
	session.LastActivity = now

	out := *session
	return &out
}

// Save stores the session under its phone number
func (sm *SessionManager) Save(session *models.ChatSession) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	stored := *session
	sm.sessions[session.PhoneNumber] = &stored
}

// Delete removes a session
func (sm *SessionManager) Delete(phone string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, phone)
}

// Sweep removes every session idle for longer than the TTL and returns how
// many were removed.
func (sm *SessionManager) Sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := sm.now().Add(-sm.sessionTTL)
	removed := 0
	for phone, session := range sm.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(sm.sessions, phone)
			removed++
		}
	}

	if removed > 0 {
		sm.logger.Info().Int("removed", removed).Int("remaining", len(sm.sessions)).Msg("expired chat sessions swept")
	}
	return removed
}

// Count returns the number of sessions held in memory
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return len(sm.sessions)
}
