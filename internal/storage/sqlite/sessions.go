package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

// SessionRepo implements core.SessionStore on SQLite. Each append runs
// in one transaction, so a message and its tool invocations are never
// observable separately. Concurrent appends to the same session are
// serialized by SQLite's writer lock, not by this repo.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) GetOrCreateSession(ctx context.Context, sessionID, userID string, metadata map[string]any) (core.Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	existing, err := r.getSessionRow(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if err != core.ErrSessionNotFound {
		return core.Session{}, err
	}

	now := time.Now().UTC()
	metaJSON, err := marshalMeta(metadata)
	if err != nil {
		return core.Session{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, metadata, created_at, last_activity) VALUES (?, ?, ?, ?, ?)`,
		sessionID, nullable(userID), metaJSON, now, now,
	)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Session{}, err
	}

	log.FromCtx(ctx).Debug().Str("session_id", sessionID).Msg("created session")

	return core.Session{
		ID:           id,
		SessionID:    sessionID,
		UserID:       userID,
		Metadata:     metadata,
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

func (r *SessionRepo) AppendMessage(ctx context.Context, sessionID, role, content string, toolsUsed []core.ToolInvocation, metadata map[string]any) (core.StoredMessage, error) {
	metaJSON, err := marshalMeta(metadata)
	if err != nil {
		return core.StoredMessage{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.StoredMessage{}, err
	}
	defer tx.Rollback()

	// The session row is touched in the same transaction, which also
	// makes it the serialization point for concurrent turn writes.
	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return core.StoredMessage{}, core.ErrSessionNotFound
		}
		return core.StoredMessage{}, fmt.Errorf("failed to look up session: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, role, content, metaJSON, now,
	)
	if err != nil {
		return core.StoredMessage{}, fmt.Errorf("failed to insert message: %w", err)
	}

	msgID, err := res.LastInsertId()
	if err != nil {
		return core.StoredMessage{}, err
	}

	for i, inv := range toolsUsed {
		args := string(inv.Args)
		if args == "" {
			args = "{}"
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tool_invocations (message_id, seq, tool_name, args, tool_call_id, execution_time_ms, success, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			msgID, i, inv.ToolName, args, nullable(inv.ToolCallID), inv.ExecutionTimeMs, inv.Success, nullable(inv.Error),
		)
		if err != nil {
			return core.StoredMessage{}, fmt.Errorf("failed to insert tool invocation: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE sessions SET last_activity = ? WHERE session_id = ?`, now, sessionID)
	if err != nil {
		return core.StoredMessage{}, fmt.Errorf("failed to touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.StoredMessage{}, err
	}

	return core.StoredMessage{
		ID:        msgID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		ToolsUsed: toolsUsed,
		Metadata:  metadata,
		CreatedAt: now,
	}, nil
}

func (r *SessionRepo) RecentMessages(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error) {
	// Fetch the LAST limit messages by ordering DESC, then reverse.
	query := `SELECT id, session_id, role, content, metadata, created_at
	          FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Newest -> oldest back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if err := r.attachInvocations(ctx, messages); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

func (r *SessionRepo) GetSession(ctx context.Context, sessionID string) (core.SessionDetail, error) {
	session, err := r.getSessionRow(ctx, sessionID)
	if err != nil {
		return core.SessionDetail{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, metadata, created_at
		 FROM messages WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return core.SessionDetail{}, fmt.Errorf("failed to query messages: %w", err)
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return core.SessionDetail{}, err
	}

	if err := r.attachInvocations(ctx, messages); err != nil {
		return core.SessionDetail{}, err
	}

	return core.SessionDetail{
		SessionID:    session.SessionID,
		CreatedAt:    session.CreatedAt,
		LastActivity: session.LastActivity,
		MessageCount: len(messages),
		Messages:     messages,
	}, nil
}

func (r *SessionRepo) getSessionRow(ctx context.Context, sessionID string) (core.Session, error) {
	var (
		s        core.Session
		userID   sql.NullString
		metaJSON string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, metadata, created_at, last_activity FROM sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&s.ID, &s.SessionID, &userID, &metaJSON, &s.CreatedAt, &s.LastActivity)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Session{}, core.ErrSessionNotFound
		}
		return core.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	s.UserID = userID.String
	s.Metadata, err = unmarshalMeta(metaJSON)
	if err != nil {
		return core.Session{}, err
	}
	return s, nil
}

func scanMessages(rows *sql.Rows) ([]core.StoredMessage, error) {
	defer rows.Close()

	var messages []core.StoredMessage
	for rows.Next() {
		var (
			m        core.StoredMessage
			metaJSON string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &metaJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		meta, err := unmarshalMeta(metaJSON)
		if err != nil {
			return nil, err
		}
		m.Metadata = meta
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *SessionRepo) attachInvocations(ctx context.Context, messages []core.StoredMessage) error {
	if len(messages) == 0 {
		return nil
	}

	byID := make(map[int64]*core.StoredMessage, len(messages))
	placeholders := make([]string, 0, len(messages))
	ids := make([]any, 0, len(messages))
	for i := range messages {
		byID[messages[i].ID] = &messages[i]
		placeholders = append(placeholders, "?")
		ids = append(ids, messages[i].ID)
	}

	query := fmt.Sprintf(
		`SELECT message_id, tool_name, args, tool_call_id, execution_time_ms, success, error
		 FROM tool_invocations WHERE message_id IN (%s) ORDER BY message_id, seq`,
		strings.Join(placeholders, ","),
	)

	rows, err := r.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("failed to query tool invocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msgID      int64
			inv        core.ToolInvocation
			args       string
			toolCallID sql.NullString
			errMsg     sql.NullString
		)
		if err := rows.Scan(&msgID, &inv.ToolName, &args, &toolCallID, &inv.ExecutionTimeMs, &inv.Success, &errMsg); err != nil {
			return fmt.Errorf("failed to scan tool invocation: %w", err)
		}
		inv.Args = json.RawMessage(args)
		inv.ToolCallID = toolCallID.String
		inv.Error = errMsg.String

		if msg, ok := byID[msgID]; ok {
			msg.ToolsUsed = append(msg.ToolsUsed, inv)
		}
	}
	return rows.Err()
}

func marshalMeta(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(data), nil
}

func unmarshalMeta(metaJSON string) (map[string]any, error) {
	if metaJSON == "" || metaJSON == "{}" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return meta, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
