package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/patil-aryan/lumos/pkg/log"
)

type GraphConfig struct {
	URI      string `env:"NEO4J_URI" envDefault:"bolt://localhost:7687"`
	User     string `env:"NEO4J_USER" envDefault:"neo4j"`
	Password string `env:"NEO4J_PASSWORD,required"`
	Database string `env:"NEO4J_DATABASE" envDefault:"neo4j"`

	// Circuit breaker around graph engine calls.
	BreakerEnabled bool    `env:"GRAPH_BREAKER_ENABLED" envDefault:"true"`
	BreakerRatio   float64 `env:"GRAPH_BREAKER_RATIO" envDefault:"0.6"`
}

func NewGraphConfig(ctx context.Context) *GraphConfig {
	c := &GraphConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse graph config")
	}
	return c
}
