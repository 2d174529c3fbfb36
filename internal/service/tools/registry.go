package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/patil-aryan/lumos/internal/core"
)

// The retrieval tool set is fixed and enumerated at build time. Tools
// are never discovered or registered dynamically.
const (
	ToolVectorSearch        = "vector_search"
	ToolGraphSearch         = "graph_search"
	ToolHybridSearch        = "hybrid_search"
	ToolEntityRelationships = "get_entity_relationships"
	ToolEntityTimeline      = "get_entity_timeline"
)

// Handler executes one tool call. The returned string is the tool
// message content handed back to the model, already serialized.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Registry maps the fixed tool set to handlers and exposes the JSON
// schema definitions the LLM provider advertises.
type Registry struct {
	defs     []core.Tool
	handlers map[string]Handler
}

// NewRegistry wires the five retrieval tools against the search
// orchestrator and entity query service.
func NewRegistry(searcher Searcher, entities EntityQuerier) *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.register(vectorSearchDef, vectorSearchHandler(searcher))
	r.register(graphSearchDef, graphSearchHandler(searcher))
	r.register(hybridSearchDef, hybridSearchHandler(searcher))
	r.register(entityRelationshipsDef, entityRelationshipsHandler(entities))
	r.register(entityTimelineDef, entityTimelineHandler(entities))
	return r
}

func (r *Registry) register(def core.Tool, handler Handler) {
	r.defs = append(r.defs, def)
	r.handlers[def.Function.Name] = handler
}

// Tools returns the definitions in registration order.
func (r *Registry) Tools() []core.Tool {
	return r.defs
}

// Execute runs the named tool. An unknown name is an error; handler
// errors propagate so the caller can record the failure in the ledger.
func (r *Registry) Execute(ctx context.Context, name string, args string) (string, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}

	raw := json.RawMessage(args)
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	return handler(ctx, raw)
}
