package models

import "time"

// ConversationState is the position of a chat session in the login/navigation flow
type ConversationState string

const (
	StateInitial          ConversationState = "initial"
	StateAwaitingUsername ConversationState = "awaiting_username"
	StateAwaitingPassword ConversationState = "awaiting_password"
	StateAuthenticated    ConversationState = "authenticated"
	StateViewingProject   ConversationState = "viewing_project"
	StateViewingTask      ConversationState = "viewing_task"
)

// IsPostLogin reports whether the state is only reachable after a successful login
func (s ConversationState) IsPostLogin() bool {
	switch s {
	case StateAuthenticated, StateViewingProject, StateViewingTask:
		return true
	}
	return false
}

// ChatSession stores WhatsApp conversation state for one phone number.
// Sessions live in process memory only.
type ChatSession struct {
	PhoneNumber      string            `json:"phone_number"`
	UserID           string            `json:"user_id,omitempty"`
	Authenticated    bool              `json:"authenticated"`
	State            ConversationState `json:"conversation_state"`
	CurrentProjectID string            `json:"current_project_id,omitempty"`
	CurrentTaskID    string            `json:"current_task_id,omitempty"`
	PendingUsername  string            `json:"-"`
	FailedAttempts   int               `json:"failed_attempts"`
	CreatedAt        time.Time         `json:"created_at"`
	LastActivity     time.Time         `json:"last_activity"`
}

// NewChatSession creates a session in the initial state
func NewChatSession(phone string, now time.Time) *ChatSession {
	return &ChatSession{
		PhoneNumber:  phone,
		State:        StateInitial,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// ClearFocus drops the project/task pointers
func (s *ChatSession) ClearFocus() {
	s.CurrentProjectID = ""
	s.CurrentTaskID = ""
}

// Logout returns the session to the initial, unauthenticated state
func (s *ChatSession) Logout() {
	s.UserID = ""
	s.Authenticated = false
	s.PendingUsername = ""
	s.FailedAttempts = 0
	s.ClearFocus()
	s.State = StateInitial
}
