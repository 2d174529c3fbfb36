package search

import (
	"context"
	"sync"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

// Orchestrator dispatches a query to the vector and/or graph engines
// and fuses their outputs in hybrid mode.
//
// Engine failures are absorbed: a failing engine contributes an empty
// result set, and both engines failing yields an empty outcome, never
// an error. The only error ever returned is input validation.
type Orchestrator struct {
	embedder core.EmbeddingProvider
	vector   core.VectorSearchEngine
	graph    core.GraphSearchEngine
}

func NewOrchestrator(embedder core.EmbeddingProvider, vector core.VectorSearchEngine, graph core.GraphSearchEngine) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		vector:   vector,
		graph:    graph,
	}
}

func (o *Orchestrator) Search(ctx context.Context, query core.Query) (core.SearchOutcome, error) {
	if err := query.Validate(); err != nil {
		return core.SearchOutcome{}, err
	}
	if query.Limit == 0 {
		query.Limit = core.DefaultSearchLimit
	}

	outcome := core.SearchOutcome{ModeUsed: query.Mode}

	switch query.Mode {
	case core.SearchModeVector:
		outcome.Vector = o.vectorSearch(ctx, query)

	case core.SearchModeGraph:
		outcome.Graph = o.graphSearch(ctx, query)

	case core.SearchModeHybrid:
		// Fan out to both engines, join on both before fusing. One
		// engine failing must not cost the other's contribution.
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			outcome.Vector = o.vectorSearch(ctx, query)
		}()
		go func() {
			defer wg.Done()
			outcome.Graph = o.graphSearch(ctx, query)
		}()
		wg.Wait()

		outcome.Vector = fuseGraphContext(query.Text, outcome.Vector, outcome.Graph)
	}

	return outcome, nil
}

// vectorSearch embeds the query text and runs the vector engine,
// degrading to an empty slice on failure.
func (o *Orchestrator) vectorSearch(ctx context.Context, query core.Query) []core.ChunkResult {
	vector, err := o.embedder.Embed(ctx, query.Text)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("embedding failed, skipping vector search")
		return nil
	}

	results, err := o.vector.QueryByVector(ctx, vector, query.Limit)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("vector search failed")
		return nil
	}
	return results
}

func (o *Orchestrator) graphSearch(ctx context.Context, query core.Query) []core.Fact {
	facts, err := o.graph.Search(ctx, query.Text)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("graph search failed")
		return nil
	}
	return facts
}
