package core

import "time"

// Session is a durable conversation thread. Sessions are created on the
// first turn and never deleted by this core; retention is external policy.
type Session struct {
	ID           int64          `json:"-"`
	SessionID    string         `json:"session_id"`
	UserID       string         `json:"user_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
}

// StoredMessage is one persisted conversation turn half. Append-only,
// totally ordered by creation within a session.
type StoredMessage struct {
	ID        int64            `json:"id"`
	SessionID string           `json:"session_id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolsUsed []ToolInvocation `json:"tools_used,omitempty"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// SessionDetail is the read model returned by GetSession.
type SessionDetail struct {
	SessionID    string          `json:"session_id"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
	MessageCount int             `json:"message_count"`
	Messages     []StoredMessage `json:"messages"`
}
