package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/patil-aryan/lumos/pkg/log"
)

type EmbeddingConfig struct {
	APIKey     string `env:"EMBEDDING_API_KEY,required"`
	BaseURL    string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse embedding config")
	}
	return c
}
