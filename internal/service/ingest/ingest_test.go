package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patil-aryan/lumos/internal/core"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2}, nil
}

func (s *stubEmbedder) Dimensions() int { return 2 }

type stubChunkWriter struct {
	chunks []core.ChunkResult
	err    error
}

func (s *stubChunkWriter) AddChunk(_ context.Context, chunk core.ChunkResult, _ []float32) error {
	if s.err != nil {
		return s.err
	}
	s.chunks = append(s.chunks, chunk)
	return nil
}

type stubGraph struct {
	episodes []core.Episode
	err      error
}

func (s *stubGraph) Search(_ context.Context, _ string) ([]core.Fact, error) { return nil, nil }

func (s *stubGraph) AddEpisode(_ context.Context, ep core.Episode) error {
	if s.err != nil {
		return s.err
	}
	s.episodes = append(s.episodes, ep)
	return nil
}

func TestIngestDocument(t *testing.T) {
	writer := &stubChunkWriter{}
	graph := &stubGraph{}
	svc := NewService(&stubEmbedder{}, writer, graph)

	result, err := svc.IngestDocument(context.Background(), Document{
		ID:      "doc-1",
		Title:   "Quarterly Report",
		Source:  "confluence",
		Content: "Acme grew revenue. Globex did not.",
	})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, 1, result.Episodes)

	require.Len(t, writer.chunks, 1)
	assert.Equal(t, "doc-1-0", writer.chunks[0].ChunkID)
	assert.Equal(t, "Quarterly Report", writer.chunks[0].Title)

	require.Len(t, graph.episodes, 1)
	assert.Equal(t, "doc-1", graph.episodes[0].ID)
	assert.False(t, graph.episodes[0].Timestamp.IsZero())
}

func TestIngestDocumentGeneratesID(t *testing.T) {
	svc := NewService(&stubEmbedder{}, &stubChunkWriter{}, &stubGraph{})

	result, err := svc.IngestDocument(context.Background(), Document{Content: "text here."})

	require.NoError(t, err)
	assert.NotEmpty(t, result.DocumentID)
}

func TestIngestDocumentEmptyContent(t *testing.T) {
	svc := NewService(&stubEmbedder{}, &stubChunkWriter{}, &stubGraph{})

	_, err := svc.IngestDocument(context.Background(), Document{ID: "doc-1"})

	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestIngestDocumentGraphFailureIsBestEffort(t *testing.T) {
	writer := &stubChunkWriter{}
	svc := NewService(&stubEmbedder{}, writer, &stubGraph{err: errors.New("graph down")})

	result, err := svc.IngestDocument(context.Background(), Document{ID: "doc-1", Content: "text."})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, 0, result.Episodes)
}

func TestIngestDocumentEmbedFailureAborts(t *testing.T) {
	writer := &stubChunkWriter{}
	svc := NewService(&stubEmbedder{err: errors.New("quota")}, writer, &stubGraph{})

	_, err := svc.IngestDocument(context.Background(), Document{ID: "doc-1", Content: "text."})

	require.Error(t, err)
	assert.Empty(t, writer.chunks)
}
