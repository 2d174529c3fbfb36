package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patil-aryan/lumos/internal/core"
)

// EntityQuerier is the slice of the entity query service the tools need.
type EntityQuerier interface {
	Relationships(ctx context.Context, name string, depth int) (core.RelationshipResult, error)
	Timeline(ctx context.Context, name string, start, end *time.Time) (core.TimelineResult, error)
}

var entityRelationshipsDef = core.Tool{
	Type: "function",
	Function: core.Function{
		Name:        ToolEntityRelationships,
		Description: "List knowledge graph facts describing how an entity relates to other entities.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"entity_name": {"type": "string", "description": "Name of the entity of interest"},
				"depth": {"type": "integer", "description": "Advisory traversal depth, minimum 1", "default": 1}
			},
			"required": ["entity_name"]
		}`),
	},
}

var entityTimelineDef = core.Tool{
	Type: "function",
	Function: core.Function{
		Name:        ToolEntityTimeline,
		Description: "Chronological facts about an entity, newest first. Optional date bounds in YYYY-MM-DD form.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"entity_name": {"type": "string", "description": "Name of the entity of interest"},
				"start_date": {"type": "string", "description": "Inclusive lower bound, YYYY-MM-DD"},
				"end_date": {"type": "string", "description": "Inclusive upper bound, YYYY-MM-DD"}
			},
			"required": ["entity_name"]
		}`),
	},
}

type relationshipArgs struct {
	EntityName string `json:"entity_name"`
	Depth      int    `json:"depth"`
}

func entityRelationshipsHandler(entities EntityQuerier) Handler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var parsed relationshipArgs
		if err := json.Unmarshal(args, &parsed); err != nil {
			return "", fmt.Errorf("parse relationship args: %w", err)
		}

		result, err := entities.Relationships(ctx, parsed.EntityName, parsed.Depth)
		if err != nil {
			return "", err
		}
		return marshalResult(result)
	}
}

type timelineArgs struct {
	EntityName string `json:"entity_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func entityTimelineHandler(entities EntityQuerier) Handler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var parsed timelineArgs
		if err := json.Unmarshal(args, &parsed); err != nil {
			return "", fmt.Errorf("parse timeline args: %w", err)
		}

		start, err := parseDate(parsed.StartDate)
		if err != nil {
			return "", fmt.Errorf("start_date: %w", err)
		}
		end, err := parseDate(parsed.EndDate)
		if err != nil {
			return "", fmt.Errorf("end_date: %w", err)
		}

		result, err := entities.Timeline(ctx, parsed.EntityName, start, end)
		if err != nil {
			return "", err
		}
		return marshalResult(result)
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
