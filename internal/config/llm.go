package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/patil-aryan/lumos/pkg/log"
)

type LLMConfig struct {
	APIKey  string `env:"LLM_API_KEY,required"`
	BaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model   string `env:"LLM_MODEL" envDefault:"gpt-4-turbo-preview"`

	// MaxToolRounds bounds the agent's tool loop per turn.
	MaxToolRounds int `env:"LLM_MAX_TOOL_ROUNDS" envDefault:"5"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
