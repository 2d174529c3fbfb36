package entity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

// Service answers entity-centric questions by phrasing them as derived
// text queries against the graph engine. Graph failures degrade to a
// structurally valid result carrying an Error annotation, never a Go
// error, so agent tool calls always get something renderable back.
type Service struct {
	graph core.GraphSearchEngine
}

func NewService(graph core.GraphSearchEngine) *Service {
	return &Service{graph: graph}
}

// Relationships returns facts the graph engine associates with the
// entity. Depth is advisory and clamped to at least 1; the graph engine
// decides how far it actually traverses.
func (s *Service) Relationships(ctx context.Context, name string, depth int) (core.RelationshipResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.RelationshipResult{}, &core.ValidationError{Field: "entity_name", Reason: "must not be empty"}
	}
	if depth < 1 {
		depth = 1
	}

	result := core.RelationshipResult{CentralEntity: name, Depth: depth}

	facts, err := s.graph.Search(ctx, fmt.Sprintf("relationships involving %s", name))
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("entity", name).Msg("relationship query failed")
		result.Error = err.Error()
		return result, nil
	}

	result.RelatedFacts = facts
	return result, nil
}

// Timeline returns the entity's facts ordered newest first by ValidAt.
// Bounds narrow the derived query text when both are given; filtering
// itself is left to the graph engine.
func (s *Service) Timeline(ctx context.Context, name string, start, end *time.Time) (core.TimelineResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.TimelineResult{}, &core.ValidationError{Field: "entity_name", Reason: "must not be empty"}
	}

	result := core.TimelineResult{Entity: name}

	query := fmt.Sprintf("timeline history evolution of %s", name)
	if start != nil && end != nil {
		query += fmt.Sprintf(" between %s and %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	facts, err := s.graph.Search(ctx, query)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("entity", name).Msg("timeline query failed")
		result.Error = err.Error()
		return result, nil
	}

	sortByValidAtDesc(facts)
	result.Facts = facts
	return result, nil
}

// sortByValidAtDesc orders facts newest ValidAt first. Facts without a
// ValidAt sink to the end; ties keep the engine's order.
func sortByValidAtDesc(facts []core.Fact) {
	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i].ValidAt, facts[j].ValidAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
