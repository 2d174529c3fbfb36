package core

import "context"

// SessionStore is the durable conversation state contract consumed by
// the conversation controller.
//
// Concurrent turns on the same session are not serialized here; the
// store's transactions keep each append atomic, but callers needing
// strict per-session single-flight must add their own lock.
type SessionStore interface {
	// GetOrCreateSession is idempotent: an existing sessionID is
	// returned unchanged, an empty one gets a fresh identifier.
	GetOrCreateSession(ctx context.Context, sessionID, userID string, metadata map[string]any) (Session, error)

	// RecentMessages returns up to limit messages, oldest first within
	// the returned window.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]StoredMessage, error)

	// AppendMessage writes one message and its tool invocations in a
	// single transaction and bumps the session's last_activity.
	AppendMessage(ctx context.Context, sessionID, role, content string, toolsUsed []ToolInvocation, metadata map[string]any) (StoredMessage, error)

	// GetSession returns the full session view or ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (SessionDetail, error)
}
