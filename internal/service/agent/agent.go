package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

// Provider is the LLM backend. ChatStream delivers text deltas through
// onDelta as they arrive and still returns the complete message.
type Provider interface {
	Chat(ctx context.Context, history []core.Message, tools []core.Tool) (core.Message, error)
	ChatStream(ctx context.Context, history []core.Message, tools []core.Tool, onDelta func(string)) (core.Message, error)
}

// ToolExecutor is the slice of the tool registry the agent needs.
type ToolExecutor interface {
	Tools() []core.Tool
	Execute(ctx context.Context, name string, args string) (string, error)
}

// Reply is the outcome of one agent run: the final assistant text plus
// the ledger of every tool call made while producing it, in call order.
type Reply struct {
	Content     string
	Invocations []core.ToolInvocation
}

// Agent runs the tool-calling loop against the fixed retrieval tool
// set. It is stateless between runs; the caller owns history.
type Agent struct {
	provider  Provider
	tools     ToolExecutor
	maxRounds int
}

func NewAgent(provider Provider, tools ToolExecutor, maxRounds int) *Agent {
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &Agent{provider: provider, tools: tools, maxRounds: maxRounds}
}

// Run executes the loop without streaming.
func (a *Agent) Run(ctx context.Context, messages []core.Message) (Reply, error) {
	return a.run(ctx, messages, nil)
}

// RunStream executes the loop, forwarding text deltas to onDelta.
// Tool-call rounds usually carry no text, so deltas arrive from the
// final round.
func (a *Agent) RunStream(ctx context.Context, messages []core.Message, onDelta func(string)) (Reply, error) {
	return a.run(ctx, messages, onDelta)
}

func (a *Agent) run(ctx context.Context, messages []core.Message, onDelta func(string)) (Reply, error) {
	logger := log.FromCtx(ctx)

	history := make([]core.Message, 0, len(messages)+1)
	history = append(history, core.Message{Role: core.RoleSystem, Content: systemPrompt})
	history = append(history, messages...)

	var reply Reply

	for round := 0; round < a.maxRounds; round++ {
		// The last permitted round withholds tools to force an answer.
		tools := a.tools.Tools()
		if round == a.maxRounds-1 {
			tools = nil
		}

		responseMsg, err := a.chat(ctx, history, tools, onDelta)
		if err != nil {
			return reply, fmt.Errorf("llm chat: %w", err)
		}

		if responseMsg.Content != "" {
			reply.Content = responseMsg.Content
		}

		if len(responseMsg.ToolCalls) == 0 {
			return reply, nil
		}

		history = append(history, responseMsg)

		for _, tc := range responseMsg.ToolCalls {
			logger.Info().Str("tool", tc.Function.Name).Msg("executing tool")

			result, invocation := a.execute(ctx, tc)
			reply.Invocations = append(reply.Invocations, invocation)

			history = append(history, core.Message{
				Role:       core.RoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	return reply, nil
}

func (a *Agent) chat(ctx context.Context, history []core.Message, tools []core.Tool, onDelta func(string)) (core.Message, error) {
	if onDelta != nil {
		return a.provider.ChatStream(ctx, history, tools, onDelta)
	}
	return a.provider.Chat(ctx, history, tools)
}

// execute runs one tool call and records it. A failing tool still
// produces a result string for the model; only the ledger entry
// carries the error.
func (a *Agent) execute(ctx context.Context, tc core.ToolCall) (string, core.ToolInvocation) {
	invocation := core.ToolInvocation{
		ToolName:   tc.Function.Name,
		Args:       json.RawMessage(tc.Function.Arguments),
		ToolCallID: tc.ID,
	}

	started := time.Now()
	result, err := a.tools.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
	invocation.ExecutionTimeMs = time.Since(started).Milliseconds()

	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("tool", tc.Function.Name).Msg("tool execution failed")
		invocation.Error = err.Error()
		return fmt.Sprintf("Error executing tool: %v", err), invocation
	}

	invocation.Success = true
	return result, invocation
}
