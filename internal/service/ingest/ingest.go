package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

// ChunkWriter is the storage side of ingestion.
type ChunkWriter interface {
	AddChunk(ctx context.Context, chunk core.ChunkResult, embedding []float32) error
}

// Document is one unit of source content to ingest.
type Document struct {
	ID       string
	Title    string
	Source   string
	Content  string
	Metadata map[string]any
}

// Result summarizes one document's ingestion.
type Result struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	Episodes   int    `json:"episodes"`
}

// Service feeds documents into both retrieval engines: chunked and
// embedded into the vector store, and written whole to the graph engine
// as an episode for entity extraction.
type Service struct {
	embedder core.EmbeddingProvider
	chunks   ChunkWriter
	graph    core.GraphSearchEngine
	cfg      ChunkerConfig
}

func NewService(embedder core.EmbeddingProvider, chunks ChunkWriter, graph core.GraphSearchEngine) *Service {
	return &Service{
		embedder: embedder,
		chunks:   chunks,
		graph:    graph,
		cfg:      DefaultChunkerConfig(),
	}
}

// IngestDocument chunks, embeds and stores one document. The vector
// write must succeed; the graph write is best-effort so a graph outage
// does not block the vector path.
func (s *Service) IngestDocument(ctx context.Context, doc Document) (Result, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Content == "" {
		return Result{}, &core.ValidationError{Field: "content", Reason: "must not be empty"}
	}

	result := Result{DocumentID: doc.ID}

	for _, chunk := range ChunkText(doc.Content, s.cfg) {
		embedding, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return result, fmt.Errorf("embed chunk %d: %w", chunk.Index, err)
		}

		err = s.chunks.AddChunk(ctx, core.ChunkResult{
			ChunkID:    fmt.Sprintf("%s-%d", doc.ID, chunk.Index),
			DocumentID: doc.ID,
			Content:    chunk.Text,
			Title:      doc.Title,
			Source:     doc.Source,
			Metadata:   doc.Metadata,
		}, embedding)
		if err != nil {
			return result, fmt.Errorf("store chunk %d: %w", chunk.Index, err)
		}
		result.Chunks++
	}

	episode := core.Episode{
		ID:        doc.ID,
		Content:   doc.Content,
		Source:    doc.Source,
		Timestamp: time.Now().UTC(),
		Metadata:  doc.Metadata,
	}
	if err := s.graph.AddEpisode(ctx, episode); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("document_id", doc.ID).Msg("graph episode write failed")
	} else {
		result.Episodes = 1
	}

	return result, nil
}
