package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/internal/service/agent"
	"github.com/patil-aryan/lumos/pkg/log"
)

// AgentRunner is the slice of the agent the controller needs.
type AgentRunner interface {
	Run(ctx context.Context, messages []core.Message) (agent.Reply, error)
	RunStream(ctx context.Context, messages []core.Message, onDelta func(string)) (agent.Reply, error)
}

// TurnRequest is one user turn. An empty SessionID starts a new
// session; Mode is an advisory search preference steered into the
// prompt, the agent still picks the tools.
type TurnRequest struct {
	Message   string
	SessionID string
	UserID    string
	Mode      core.SearchMode
	Metadata  map[string]any
}

func (r TurnRequest) validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return &core.ValidationError{Field: "message", Reason: "must not be empty"}
	}
	_, err := core.ParseSearchMode(string(r.Mode))
	return err
}

// TurnResult is the completed turn.
type TurnResult struct {
	SessionID string                `json:"session_id"`
	Response  string                `json:"response"`
	ToolsUsed []core.ToolInvocation `json:"tools_used,omitempty"`
}

// Controller owns the conversation turn lifecycle: load context, make
// the user message durable, run the agent, persist the outcome.
type Controller struct {
	store core.SessionStore
	agent AgentRunner
	cfg   *config.AppConfig
}

func NewController(store core.SessionStore, runner AgentRunner, cfg *config.AppConfig) *Controller {
	return &Controller{store: store, agent: runner, cfg: cfg}
}

// RunTurn executes a complete non-streaming turn. The user message is
// persisted before the agent runs, so a turn that fails later still
// leaves the question on record.
func (c *Controller) RunTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	session, history, err := c.prepare(ctx, req)
	if err != nil {
		return TurnResult{}, err
	}

	prompt := c.buildPrompt(history, req)

	reply, err := c.agent.Run(ctx, prompt)
	if err != nil {
		return TurnResult{}, fmt.Errorf("agent run: %w", err)
	}

	if _, err := c.store.AppendMessage(ctx, session.SessionID, core.RoleAssistant, reply.Content, reply.Invocations, nil); err != nil {
		return TurnResult{}, fmt.Errorf("persist assistant message: %w", err)
	}

	return TurnResult{
		SessionID: session.SessionID,
		Response:  reply.Content,
		ToolsUsed: reply.Invocations,
	}, nil
}

// prepare resolves the session, loads the context window and persists
// the user message. Shared by the streaming and non-streaming paths.
func (c *Controller) prepare(ctx context.Context, req TurnRequest) (core.Session, []core.StoredMessage, error) {
	if err := req.validate(); err != nil {
		return core.Session{}, nil, err
	}

	session, err := c.store.GetOrCreateSession(ctx, req.SessionID, req.UserID, req.Metadata)
	if err != nil {
		return core.Session{}, nil, fmt.Errorf("resolve session: %w", err)
	}

	history, err := c.store.RecentMessages(ctx, session.SessionID, c.cfg.HistoryFetchLimit)
	if err != nil {
		return core.Session{}, nil, fmt.Errorf("load history: %w", err)
	}

	if _, err := c.store.AppendMessage(ctx, session.SessionID, core.RoleUser, req.Message, nil, nil); err != nil {
		return core.Session{}, nil, fmt.Errorf("persist user message: %w", err)
	}

	return session, history, nil
}

// buildPrompt renders the turn prompt, appending the caller's search
// preference when one was given explicitly.
func (c *Controller) buildPrompt(history []core.StoredMessage, req TurnRequest) []core.Message {
	prompt := buildTurnPrompt(history, c.cfg.ContextWindowSize, req.Message)

	switch req.Mode {
	case core.SearchModeVector:
		prompt[0].Content += "\n\nPrefer the vector_search tool for this question."
	case core.SearchModeGraph:
		prompt[0].Content += "\n\nPrefer the graph_search tool for this question."
	}
	return prompt
}

// SessionDetail exposes the stored session read model.
func (c *Controller) SessionDetail(ctx context.Context, sessionID string) (core.SessionDetail, error) {
	return c.store.GetSession(ctx, sessionID)
}

// persistAssistant writes the assistant outcome detached from the
// request context, so a client disconnect cannot lose the turn.
func (c *Controller) persistAssistant(ctx context.Context, sessionID, content string, invocations []core.ToolInvocation) error {
	detached := context.WithoutCancel(ctx)
	if _, err := c.store.AppendMessage(detached, sessionID, core.RoleAssistant, content, invocations, nil); err != nil {
		log.FromCtx(detached).Error().Err(err).Str("session_id", sessionID).Msg("failed to persist assistant message")
		return fmt.Errorf("persist assistant message: %w", err)
	}
	return nil
}
