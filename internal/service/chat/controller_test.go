package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/internal/service/agent"
)

type appended struct {
	role      string
	content   string
	toolsUsed []core.ToolInvocation
}

// memStore is an in-memory SessionStore for controller tests.
type memStore struct {
	sessionID string
	history   []core.StoredMessage
	appends   []appended

	appendErr  map[string]error
	historyErr error
}

func (s *memStore) GetOrCreateSession(_ context.Context, sessionID, _ string, _ map[string]any) (core.Session, error) {
	if sessionID == "" {
		sessionID = "generated-session"
	}
	s.sessionID = sessionID
	return core.Session{SessionID: sessionID, CreatedAt: time.Now()}, nil
}

func (s *memStore) RecentMessages(_ context.Context, _ string, limit int) ([]core.StoredMessage, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	if limit > 0 && len(s.history) > limit {
		return s.history[len(s.history)-limit:], nil
	}
	return s.history, nil
}

func (s *memStore) AppendMessage(_ context.Context, sessionID, role, content string, toolsUsed []core.ToolInvocation, _ map[string]any) (core.StoredMessage, error) {
	if err := s.appendErr[role]; err != nil {
		return core.StoredMessage{}, err
	}
	s.appends = append(s.appends, appended{role: role, content: content, toolsUsed: toolsUsed})
	return core.StoredMessage{SessionID: sessionID, Role: role, Content: content}, nil
}

func (s *memStore) GetSession(_ context.Context, sessionID string) (core.SessionDetail, error) {
	if sessionID != s.sessionID {
		return core.SessionDetail{}, core.ErrSessionNotFound
	}
	return core.SessionDetail{SessionID: sessionID, MessageCount: len(s.appends)}, nil
}

type fakeAgent struct {
	reply    agent.Reply
	err      error
	prompt   []core.Message
	ran      bool
	streamed bool
}

func (f *fakeAgent) Run(_ context.Context, messages []core.Message) (agent.Reply, error) {
	f.ran = true
	f.prompt = messages
	return f.reply, f.err
}

func (f *fakeAgent) RunStream(_ context.Context, messages []core.Message, onDelta func(string)) (agent.Reply, error) {
	f.streamed = true
	f.prompt = messages
	if f.err == nil && onDelta != nil {
		onDelta(f.reply.Content)
	}
	return f.reply, f.err
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{HistoryFetchLimit: 10, ContextWindowSize: 6}
}

func TestRunTurnNewSession(t *testing.T) {
	store := &memStore{}
	runner := &fakeAgent{reply: agent.Reply{Content: "hello there"}}
	c := NewController(store, runner, testConfig())

	result, err := c.RunTurn(context.Background(), TurnRequest{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "generated-session", result.SessionID)
	assert.Equal(t, "hello there", result.Response)

	// User message first, assistant second.
	require.Len(t, store.appends, 2)
	assert.Equal(t, core.RoleUser, store.appends[0].role)
	assert.Equal(t, "hi", store.appends[0].content)
	assert.Equal(t, core.RoleAssistant, store.appends[1].role)

	// First turn has no prior context; the prompt is the bare question.
	require.Len(t, runner.prompt, 1)
	assert.Equal(t, "hi", runner.prompt[0].Content)
}

func TestRunTurnRendersContextWindow(t *testing.T) {
	store := &memStore{
		sessionID: "s1",
		history: []core.StoredMessage{
			{Role: core.RoleUser, Content: "who is Acme?"},
			{Role: core.RoleAssistant, Content: "Acme is a corporation."},
		},
	}
	runner := &fakeAgent{reply: agent.Reply{Content: "ok"}}
	c := NewController(store, runner, testConfig())

	_, err := c.RunTurn(context.Background(), TurnRequest{Message: "and Globex?", SessionID: "s1"})

	require.NoError(t, err)
	require.Len(t, runner.prompt, 1)
	content := runner.prompt[0].Content
	assert.Contains(t, content, "Previous conversation:")
	assert.Contains(t, content, "user: who is Acme?")
	assert.Contains(t, content, "assistant: Acme is a corporation.")
	assert.Contains(t, content, "Current question: and Globex?")
}

func TestRunTurnPersistsToolLedger(t *testing.T) {
	store := &memStore{}
	invocations := []core.ToolInvocation{
		{ToolName: "hybrid_search", Success: true, ExecutionTimeMs: 12},
	}
	runner := &fakeAgent{reply: agent.Reply{Content: "found", Invocations: invocations}}
	c := NewController(store, runner, testConfig())

	result, err := c.RunTurn(context.Background(), TurnRequest{Message: "acme?"})

	require.NoError(t, err)
	assert.Equal(t, invocations, result.ToolsUsed)
	require.Len(t, store.appends, 2)
	assert.Equal(t, invocations, store.appends[1].toolsUsed)
	assert.Nil(t, store.appends[0].toolsUsed)
}

func TestRunTurnUserMessageDurableBeforeAgentFailure(t *testing.T) {
	store := &memStore{}
	runner := &fakeAgent{err: errors.New("model unavailable")}
	c := NewController(store, runner, testConfig())

	_, err := c.RunTurn(context.Background(), TurnRequest{Message: "hi"})

	require.Error(t, err)
	// The question survives the failed turn.
	require.Len(t, store.appends, 1)
	assert.Equal(t, core.RoleUser, store.appends[0].role)
}

func TestRunTurnUserPersistFailureSkipsAgent(t *testing.T) {
	store := &memStore{appendErr: map[string]error{core.RoleUser: errors.New("disk full")}}
	runner := &fakeAgent{reply: agent.Reply{Content: "never"}}
	c := NewController(store, runner, testConfig())

	_, err := c.RunTurn(context.Background(), TurnRequest{Message: "hi"})

	require.Error(t, err)
	assert.False(t, runner.ran)
}

func TestRunTurnEmptyMessage(t *testing.T) {
	c := NewController(&memStore{}, &fakeAgent{}, testConfig())

	_, err := c.RunTurn(context.Background(), TurnRequest{Message: "   "})

	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestRunTurnModePreferenceInPrompt(t *testing.T) {
	store := &memStore{}
	runner := &fakeAgent{reply: agent.Reply{Content: "ok"}}
	c := NewController(store, runner, testConfig())

	_, err := c.RunTurn(context.Background(), TurnRequest{Message: "hi", Mode: core.SearchModeGraph})

	require.NoError(t, err)
	assert.Contains(t, runner.prompt[0].Content, "Prefer the graph_search tool")
}

func TestRunTurnRejectsUnknownMode(t *testing.T) {
	c := NewController(&memStore{}, &fakeAgent{}, testConfig())

	_, err := c.RunTurn(context.Background(), TurnRequest{Message: "hi", Mode: "semantic"})

	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestTwoTurnsAccumulateFourMessages(t *testing.T) {
	store := &memStore{}
	runner := &fakeAgent{reply: agent.Reply{Content: "answer"}}
	c := NewController(store, runner, testConfig())

	first, err := c.RunTurn(context.Background(), TurnRequest{Message: "one"})
	require.NoError(t, err)

	_, err = c.RunTurn(context.Background(), TurnRequest{Message: "two", SessionID: first.SessionID})
	require.NoError(t, err)

	detail, err := c.SessionDetail(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 4, detail.MessageCount)
}
