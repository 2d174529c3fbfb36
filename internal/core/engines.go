package core

import "context"

// EmbeddingProvider turns query text into a fixed-length vector. A
// failing provider degrades to a zero vector of the configured
// dimension rather than failing the turn.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// VectorSearchEngine returns content chunks ordered by descending
// relevance for a query embedding.
type VectorSearchEngine interface {
	QueryByVector(ctx context.Context, vector []float32, limit int) ([]ChunkResult, error)
}

// GraphSearchEngine answers free-text queries with time-stamped facts.
// AddEpisode is the write path used by ingestion, never by retrieval.
type GraphSearchEngine interface {
	Search(ctx context.Context, text string) ([]Fact, error)
	AddEpisode(ctx context.Context, ep Episode) error
}
