package entity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patil-aryan/lumos/internal/core"
)

type stubGraph struct {
	facts []core.Fact
	err   error
	query string
}

func (s *stubGraph) Search(_ context.Context, query string) ([]core.Fact, error) {
	s.query = query
	return s.facts, s.err
}

func (s *stubGraph) AddEpisode(_ context.Context, _ core.Episode) error { return nil }

func mustTime(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return &parsed
}

func TestRelationshipsDerivedQuery(t *testing.T) {
	graph := &stubGraph{facts: []core.Fact{{Fact: "Acme acquired Globex", UUID: "f1"}}}
	svc := NewService(graph)

	result, err := svc.Relationships(context.Background(), "Acme", 2)

	require.NoError(t, err)
	assert.Equal(t, "relationships involving Acme", graph.query)
	assert.Equal(t, "Acme", result.CentralEntity)
	assert.Equal(t, 2, result.Depth)
	require.Len(t, result.RelatedFacts, 1)
	assert.Empty(t, result.Error)
}

func TestRelationshipsClampsDepth(t *testing.T) {
	svc := NewService(&stubGraph{})

	result, err := svc.Relationships(context.Background(), "Acme", 0)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Depth)
}

func TestRelationshipsEmptyEntity(t *testing.T) {
	svc := NewService(&stubGraph{})

	_, err := svc.Relationships(context.Background(), "  ", 1)

	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestRelationshipsGraphFailureAnnotates(t *testing.T) {
	svc := NewService(&stubGraph{err: errors.New("neo4j unreachable")})

	result, err := svc.Relationships(context.Background(), "Acme", 1)

	require.NoError(t, err)
	assert.Equal(t, "Acme", result.CentralEntity)
	assert.Empty(t, result.RelatedFacts)
	assert.Contains(t, result.Error, "unreachable")
}

func TestTimelineSortsNewestFirstWithNilLast(t *testing.T) {
	graph := &stubGraph{facts: []core.Fact{
		{Fact: "undated", UUID: "f1"},
		{Fact: "early 2023", UUID: "f2", ValidAt: mustTime(t, "2023-01-01")},
		{Fact: "mid 2022", UUID: "f3", ValidAt: mustTime(t, "2022-06-01")},
	}}
	svc := NewService(graph)

	result, err := svc.Timeline(context.Background(), "Acme", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "timeline history evolution of Acme", graph.query)
	require.Len(t, result.Facts, 3)
	assert.Equal(t, "early 2023", result.Facts[0].Fact)
	assert.Equal(t, "mid 2022", result.Facts[1].Fact)
	assert.Equal(t, "undated", result.Facts[2].Fact)
}

func TestTimelineBoundedQuery(t *testing.T) {
	graph := &stubGraph{}
	svc := NewService(graph)

	_, err := svc.Timeline(context.Background(), "Acme", mustTime(t, "2022-01-01"), mustTime(t, "2023-01-01"))

	require.NoError(t, err)
	assert.Equal(t, "timeline history evolution of Acme between 2022-01-01 and 2023-01-01", graph.query)
}

func TestTimelineSingleBoundIgnored(t *testing.T) {
	graph := &stubGraph{}
	svc := NewService(graph)

	_, err := svc.Timeline(context.Background(), "Acme", mustTime(t, "2022-01-01"), nil)

	require.NoError(t, err)
	assert.Equal(t, "timeline history evolution of Acme", graph.query)
}

func TestTimelineGraphFailureAnnotates(t *testing.T) {
	svc := NewService(&stubGraph{err: errors.New("session expired")})

	result, err := svc.Timeline(context.Background(), "Acme", nil, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Facts)
	assert.Contains(t, result.Error, "session expired")
}
