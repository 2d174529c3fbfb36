package graph

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

// BreakerEngine wraps a core.GraphSearchEngine with a circuit breaker
// so a struggling graph database sheds load fast instead of holding
// every turn at its timeout. Callers already treat engine errors as
// degraded-empty results, so an open breaker just speeds that up.
type BreakerEngine struct {
	engine core.GraphSearchEngine
	cb     *gobreaker.CircuitBreaker
}

func NewBreakerEngine(engine core.GraphSearchEngine, cfg *config.GraphConfig) core.GraphSearchEngine {
	if !cfg.BreakerEnabled {
		return engine
	}

	st := gobreaker.Settings{
		Name: "graph-search",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.BreakerRatio
		},
	}

	return &BreakerEngine{
		engine: engine,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

func (b *BreakerEngine) Search(ctx context.Context, text string) ([]core.Fact, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.engine.Search(ctx, text)
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("breaker", b.cb.Name()).Str("state", b.cb.State().String()).Msg("graph search rejected")
		return nil, err
	}
	return result.([]core.Fact), nil
}

func (b *BreakerEngine) AddEpisode(ctx context.Context, ep core.Episode) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.engine.AddEpisode(ctx, ep)
	})
	return err
}
