package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/patil-aryan/lumos/internal/core"
)

// ChunkRepo stores embedded content chunks and serves as the reference
// core.VectorSearchEngine. Embeddings are LittleEndian float32 blobs;
// ranking is brute-force cosine similarity over all stored chunks,
// which is fine for the corpus sizes this store is meant for.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// AddChunk inserts one embedded chunk. The chunk_id is the caller's
// stable identifier; re-ingesting the same chunk_id replaces the row.
func (r *ChunkRepo) AddChunk(ctx context.Context, chunk core.ChunkResult, embedding []float32) error {
	metaJSON, err := marshalMeta(chunk.Metadata)
	if err != nil {
		return err
	}

	vecBlob, err := serializeVector(embedding)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO chunks (chunk_id, document_id, content, title, source, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chunk_id) DO UPDATE SET
		   document_id = excluded.document_id,
		   content = excluded.content,
		   title = excluded.title,
		   source = excluded.source,
		   metadata = excluded.metadata,
		   embedding = excluded.embedding`,
		chunk.ChunkID, chunk.DocumentID, chunk.Content, chunk.Title, chunk.Source, metaJSON, vecBlob, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// QueryByVector implements core.VectorSearchEngine. Results are ordered
// by descending cosine similarity.
func (r *ChunkRepo) QueryByVector(ctx context.Context, vector []float32, limit int) ([]core.ChunkResult, error) {
	if limit <= 0 {
		limit = core.DefaultSearchLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT chunk_id, document_id, content, title, source, metadata, embedding
		 FROM chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	defer rows.Close()

	var results []core.ChunkResult
	for rows.Next() {
		var (
			c        core.ChunkResult
			metaJSON string
			vecBlob  []byte
		)
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &c.Content, &c.Title, &c.Source, &metaJSON, &vecBlob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}

		c.Metadata, err = unmarshalMeta(metaJSON)
		if err != nil {
			return nil, err
		}

		c.Score = cosineSimilarity(vector, deserializeVector(vecBlob))
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
