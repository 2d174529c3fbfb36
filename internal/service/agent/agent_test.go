package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patil-aryan/lumos/internal/core"
)

// scriptedProvider returns responses in order and records each request.
type scriptedProvider struct {
	responses []core.Message
	err       error
	requests  [][]core.Message
	toolSets  [][]core.Tool
	streamed  bool
}

func (p *scriptedProvider) Chat(_ context.Context, history []core.Message, tools []core.Tool) (core.Message, error) {
	return p.next(history, tools)
}

func (p *scriptedProvider) ChatStream(_ context.Context, history []core.Message, tools []core.Tool, onDelta func(string)) (core.Message, error) {
	p.streamed = true
	msg, err := p.next(history, tools)
	if err == nil && msg.Content != "" && onDelta != nil {
		onDelta(msg.Content)
	}
	return msg, err
}

func (p *scriptedProvider) next(history []core.Message, tools []core.Tool) (core.Message, error) {
	p.requests = append(p.requests, history)
	p.toolSets = append(p.toolSets, tools)
	if p.err != nil {
		return core.Message{}, p.err
	}
	if len(p.responses) == 0 {
		return core.Message{}, errors.New("scripted provider exhausted")
	}
	msg := p.responses[0]
	p.responses = p.responses[1:]
	return msg, nil
}

type recordingTools struct {
	results map[string]string
	errs    map[string]error
	calls   []string
}

func (r *recordingTools) Tools() []core.Tool {
	return []core.Tool{{Type: "function", Function: core.Function{Name: "hybrid_search"}}}
}

func (r *recordingTools) Execute(_ context.Context, name string, _ string) (string, error) {
	r.calls = append(r.calls, name)
	if err, ok := r.errs[name]; ok {
		return "", err
	}
	return r.results[name], nil
}

func toolCall(id, name, args string) core.ToolCall {
	return core.ToolCall{
		ID:   id,
		Type: "function",
		Function: core.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestRunDirectAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []core.Message{
		{Role: core.RoleAssistant, Content: "direct answer"},
	}}
	a := NewAgent(provider, &recordingTools{}, 5)

	reply, err := a.Run(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "direct answer", reply.Content)
	assert.Empty(t, reply.Invocations)

	// System prompt is always the first message in the request.
	require.NotEmpty(t, provider.requests)
	assert.Equal(t, core.RoleSystem, provider.requests[0][0].Role)
}

func TestRunToolLoop(t *testing.T) {
	provider := &scriptedProvider{responses: []core.Message{
		{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{
			toolCall("call_1", "hybrid_search", `{"query":"acme"}`),
		}},
		{Role: core.RoleAssistant, Content: "found it"},
	}}
	tools := &recordingTools{results: map[string]string{"hybrid_search": `{"results":[]}`}}
	a := NewAgent(provider, tools, 5)

	reply, err := a.Run(context.Background(), []core.Message{{Role: core.RoleUser, Content: "acme?"}})

	require.NoError(t, err)
	assert.Equal(t, "found it", reply.Content)
	assert.Equal(t, []string{"hybrid_search"}, tools.calls)

	require.Len(t, reply.Invocations, 1)
	inv := reply.Invocations[0]
	assert.Equal(t, "hybrid_search", inv.ToolName)
	assert.Equal(t, "call_1", inv.ToolCallID)
	assert.True(t, inv.Success)
	assert.Empty(t, inv.Error)

	// Second request includes the assistant tool call and the tool result.
	second := provider.requests[1]
	last := second[len(second)-1]
	assert.Equal(t, core.RoleTool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Equal(t, `{"results":[]}`, last.Content)
}

func TestRunToolFailureRecordedAndFedBack(t *testing.T) {
	provider := &scriptedProvider{responses: []core.Message{
		{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{
			toolCall("call_1", "hybrid_search", `{}`),
		}},
		{Role: core.RoleAssistant, Content: "sorry, search is down"},
	}}
	tools := &recordingTools{errs: map[string]error{"hybrid_search": errors.New("engine offline")}}
	a := NewAgent(provider, tools, 5)

	reply, err := a.Run(context.Background(), []core.Message{{Role: core.RoleUser, Content: "x"}})

	require.NoError(t, err)
	require.Len(t, reply.Invocations, 1)
	assert.False(t, reply.Invocations[0].Success)
	assert.Contains(t, reply.Invocations[0].Error, "engine offline")

	second := provider.requests[1]
	last := second[len(second)-1]
	assert.Contains(t, last.Content, "Error executing tool")
}

func TestRunLastRoundWithholdsTools(t *testing.T) {
	provider := &scriptedProvider{responses: []core.Message{
		{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{toolCall("c1", "hybrid_search", `{}`)}},
		{Role: core.RoleAssistant, Content: "best effort"},
	}}
	tools := &recordingTools{results: map[string]string{"hybrid_search": "{}"}}
	a := NewAgent(provider, tools, 2)

	reply, err := a.Run(context.Background(), []core.Message{{Role: core.RoleUser, Content: "x"}})

	require.NoError(t, err)
	assert.Equal(t, "best effort", reply.Content)
	require.Len(t, provider.toolSets, 2)
	assert.NotEmpty(t, provider.toolSets[0])
	assert.Empty(t, provider.toolSets[1])
}

func TestRunProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("rate limited")}
	a := NewAgent(provider, &recordingTools{}, 3)

	_, err := a.Run(context.Background(), []core.Message{{Role: core.RoleUser, Content: "x"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestRunStreamForwardsDeltas(t *testing.T) {
	provider := &scriptedProvider{responses: []core.Message{
		{Role: core.RoleAssistant, Content: "streamed text"},
	}}
	a := NewAgent(provider, &recordingTools{}, 3)

	var got string
	reply, err := a.RunStream(context.Background(), []core.Message{{Role: core.RoleUser, Content: "x"}}, func(delta string) {
		got += delta
	})

	require.NoError(t, err)
	assert.True(t, provider.streamed)
	assert.Equal(t, "streamed text", reply.Content)
	assert.Equal(t, "streamed text", got)
}
