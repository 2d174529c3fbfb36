package embedding

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/pkg/log"
	"github.com/patil-aryan/lumos/pkg/retry"
)

// OpenAIEmbedder implements core.EmbeddingProvider against any
// OpenAI-compatible embeddings endpoint.
//
// A failed call degrades to a zero vector of the configured dimension
// instead of an error: retrieval quality drops, the turn survives.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	retrier    *retry.Retrier
}

func NewOpenAIEmbedder(cfg *config.EmbeddingConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		retrier:    retry.NewDefaultRetrier(),
	}
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return make([]float32, e.dimensions), nil
	}

	var resp openai.EmbeddingResponse
	err := e.retrier.Do(ctx, func() error {
		var reqErr error
		resp, reqErr = e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      []string{clean},
			Model:      openai.EmbeddingModel(e.model),
			Dimensions: e.dimensions,
		})
		return reqErr
	})
	if err != nil || len(resp.Data) == 0 {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to generate embedding, falling back to zero vector")
		return make([]float32, e.dimensions), nil
	}

	return resp.Data[0].Embedding, nil
}
