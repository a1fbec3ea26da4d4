package ai

import "context"

// EmbeddingProvider turns canonical query text into a fixed-dimension vector.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Identifier is implemented by providers that can name the model they call.
// The name keys cached vectors so a model swap never serves stale ones.
type Identifier interface {
	ModelID() string
}

func modelIDOf(p EmbeddingProvider) string {
	if id, ok := p.(Identifier); ok {
		return id.ModelID()
	}
	return "default"
}
