package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

// OpenAIEmbedder implements EmbeddingProvider using OpenAI embeddings.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
}

// NewOpenAIEmbedder creates a new embedding provider using
// text-embedding-3-small unless the config names another model.
func NewOpenAIEmbedder(cfg *config.Config) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.EnvVars.OpenAIAPIKey)
	if cfg.EnvVars.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.EnvVars.OpenAIBaseURL
	}

	model := openai.SmallEmbedding3
	if cfg.EnvVars.OpenAIEmbeddingModel != "" {
		model = openai.EmbeddingModel(cfg.EnvVars.OpenAIEmbeddingModel)
	}

	var client *openai.Client
	if cfg.EnvVars.OpenAIAPIKey != "" {
		client = openai.NewClientWithConfig(clientCfg)
	}

	return &OpenAIEmbedder{
		client:    client,
		model:     model,
		dimension: cfg.EnvVars.EmbeddingDimension,
	}
}

// ModelID names the model for cache keys.
func (p *OpenAIEmbedder) ModelID() string {
	return "openai:" + string(p.model)
}

// GenerateEmbedding produces a vector embedding for the given text.
func (p *OpenAIEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: OpenAI API key is not set", models.ErrConfiguration)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: embedding text is empty", models.ErrValidation)
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: p.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embedding API returned no data", models.ErrMalformedResponse)
	}

	vec := resp.Data[0].Embedding
	if err := checkDimension(vec, p.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}

// classifyOpenAIError separates credential problems from transient failures.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%w: embedding API: %v", models.ErrConfiguration, err)
		}
	}
	return fmt.Errorf("%w: embedding API: %w", models.ErrUpstreamUnavailable, err)
}
