package chat

import (
	"context"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

// EventType enumerates the streaming turn events, in emission order:
// one session event, zero or more text deltas, an optional tools event,
// then exactly one of end or error.
type EventType string

const (
	EventSession EventType = "session"
	EventText    EventType = "text"
	EventTools   EventType = "tools"
	EventEnd     EventType = "end"
	EventError   EventType = "error"
)

// Event is one streaming turn event. Only the fields relevant to the
// type are populated.
type Event struct {
	Type      EventType             `json:"type"`
	SessionID string                `json:"session_id,omitempty"`
	Text      string                `json:"content,omitempty"`
	Tools     []core.ToolInvocation `json:"tools,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// streamBuffer bounds in-flight events. A consumer slower than the
// producer applies backpressure instead of growing memory.
const streamBuffer = 32

// RunTurnStream executes a streaming turn. Session resolution and the
// user message write happen synchronously, so an error return means
// nothing was emitted. The returned channel is closed after the final
// end or error event; it has a single consumer.
//
// If the caller's context is cancelled mid-turn, whatever assistant
// text accumulated is still persisted.
func (c *Controller) RunTurnStream(ctx context.Context, req TurnRequest) (<-chan Event, error) {
	session, history, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt := c.buildPrompt(history, req)
	events := make(chan Event, streamBuffer)

	go func() {
		defer close(events)

		emit := func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		emit(Event{Type: EventSession, SessionID: session.SessionID})

		var accumulated string
		reply, err := c.agent.RunStream(ctx, prompt, func(delta string) {
			accumulated += delta
			emit(Event{Type: EventText, Text: delta})
		})

		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("session_id", session.SessionID).Msg("streaming turn failed")
			if accumulated != "" {
				c.persistAssistant(ctx, session.SessionID, accumulated, reply.Invocations)
			}
			emit(Event{Type: EventError, Error: err.Error()})
			return
		}

		if len(reply.Invocations) > 0 {
			emit(Event{Type: EventTools, Tools: reply.Invocations})
		}

		if err := c.persistAssistant(ctx, session.SessionID, reply.Content, reply.Invocations); err != nil {
			emit(Event{Type: EventError, Error: err.Error()})
			return
		}
		emit(Event{Type: EventEnd, SessionID: session.SessionID})
	}()

	return events, nil
}
