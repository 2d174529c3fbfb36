package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/internal/core"
)

// OpenAI implements the agent's Provider against any
// chat-completions-compatible endpoint, the base URL comes from config.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(cfg *config.LLMConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (o *OpenAI) Chat(ctx context.Context, history []core.Message, tools []core.Tool) (core.Message, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: toOpenAIMessages(history),
		Tools:    toOpenAITools(tools),
	})
	if err != nil {
		return core.Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.Message{}, fmt.Errorf("chat completion: empty choices")
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

// ChatStream accumulates the streamed response into a complete message
// while forwarding content deltas to onDelta.
func (o *OpenAI) ChatStream(ctx context.Context, history []core.Message, tools []core.Tool, onDelta func(string)) (core.Message, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: toOpenAIMessages(history),
		Tools:    toOpenAITools(tools),
		Stream:   true,
	})
	if err != nil {
		return core.Message{}, fmt.Errorf("chat completion stream: %w", err)
	}
	defer stream.Close()

	msg := core.Message{Role: core.RoleAssistant}

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.Message{}, fmt.Errorf("stream recv: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			msg.Content += delta.Content
			if onDelta != nil {
				onDelta(delta.Content)
			}
		}
		mergeToolCallDeltas(&msg, delta.ToolCalls)
	}

	return msg, nil
}

// mergeToolCallDeltas folds streamed tool call fragments into msg.
// Fragments address a call by index and append argument text.
func mergeToolCallDeltas(msg *core.Message, deltas []openai.ToolCall) {
	for _, tc := range deltas {
		idx := len(msg.ToolCalls)
		if tc.Index != nil {
			idx = *tc.Index
		}
		for idx >= len(msg.ToolCalls) {
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{Type: "function"})
		}

		call := &msg.ToolCalls[idx]
		if tc.ID != "" {
			call.ID = tc.ID
		}
		if tc.Function.Name != "" {
			call.Function.Name = tc.Function.Name
		}
		call.Function.Arguments += tc.Function.Arguments
	}
}

func toOpenAIMessages(history []core.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		converted := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		messages = append(messages, converted)
	}
	return messages
}

func toOpenAITools(tools []core.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	converted := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		converted = append(converted, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  json.RawMessage(t.Function.Parameters),
			},
		})
	}
	return converted
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) core.Message {
	msg := core.Message{
		Role:    m.Role,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: core.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return msg
}
