package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	LumosName    = "Lumos"
	LumosVersion = "1.0.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// SearchMode selects which retrieval engines a query is dispatched to.
type SearchMode string

const (
	SearchModeVector SearchMode = "vector"
	SearchModeGraph  SearchMode = "graph"
	SearchModeHybrid SearchMode = "hybrid"
)

// ParseSearchMode maps the wire value to a SearchMode. The empty string
// means "let the agent decide", which defaults to hybrid.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case SearchModeVector, SearchModeGraph, SearchModeHybrid:
		return SearchMode(s), nil
	case "":
		return SearchModeHybrid, nil
	}
	return "", &ValidationError{Field: "search_type", Reason: fmt.Sprintf("unknown search mode %q", s)}
}

const DefaultSearchLimit = 10

// Query is a single retrieval request. Constructed per call, never reused.
type Query struct {
	Text  string     `json:"text"`
	Mode  SearchMode `json:"mode"`
	Limit int        `json:"limit"`
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if q.Limit < 0 {
		return &ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	_, err := ParseSearchMode(string(q.Mode))
	return err
}

// ChunkResult is one vector engine hit. GraphContext is filled by hybrid
// fusion only; everything else comes back from the engine verbatim.
type ChunkResult struct {
	ChunkID      string         `json:"chunk_id"`
	DocumentID   string         `json:"document_id"`
	Content      string         `json:"content"`
	Score        float64        `json:"score"`
	Title        string         `json:"document_title"`
	Source       string         `json:"document_source"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	GraphContext []string       `json:"graph_context,omitempty"`
}

// Fact is a single graph engine assertion with a bitemporal validity
// window. InvalidAt == nil means the fact is still true as of now.
type Fact struct {
	Fact           string     `json:"fact"`
	UUID           string     `json:"uuid"`
	ValidAt        *time.Time `json:"valid_at,omitempty"`
	InvalidAt      *time.Time `json:"invalid_at,omitempty"`
	SourceNodeUUID string     `json:"source_node_uuid,omitempty"`
}

// SearchOutcome carries both engines' contributions for one query.
// In hybrid mode Vector has already been fused with Graph.
type SearchOutcome struct {
	Vector   []ChunkResult `json:"results"`
	Graph    []Fact        `json:"graph_results"`
	ModeUsed SearchMode    `json:"mode_used"`
}

func (o SearchOutcome) Total() int {
	return len(o.Vector) + len(o.Graph)
}

// Episode is a unit of content written into the graph engine by the
// ingestion path. Retrieval never constructs one.
type Episode struct {
	ID        string         `json:"episode_id"`
	Content   string         `json:"content"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ToolInvocation is one tool call made while producing a single
// assistant message. Written once, never mutated.
type ToolInvocation struct {
	ToolName        string          `json:"tool_name"`
	Args            json.RawMessage `json:"args,omitempty"`
	ToolCallID      string          `json:"tool_call_id,omitempty"`
	ExecutionTimeMs int64           `json:"execution_time_ms,omitempty"`
	Success         bool            `json:"success"`
	Error           string          `json:"error,omitempty"`
}

// RelationshipResult is the EntityQueryService answer for a
// relationship query. Depth is advisory metadata passed through to the
// caller; the graph engine interprets traversal depth.
type RelationshipResult struct {
	CentralEntity string `json:"central_entity"`
	RelatedFacts  []Fact `json:"related_facts"`
	Depth         int    `json:"depth"`
	Error         string `json:"error,omitempty"`
}

// TimelineResult is the EntityQueryService answer for a timeline query.
// Facts are ordered newest ValidAt first, with undated facts last.
type TimelineResult struct {
	Entity string `json:"entity"`
	Facts  []Fact `json:"timeline"`
	Error  string `json:"error,omitempty"`
}
