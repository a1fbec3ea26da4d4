package repository

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"go.uber.org/zap"
)

// pineconeQuerier is the subset of *pinecone.IndexConnection we call.
type pineconeQuerier interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
}

// PineconeIndex queries a hosted Pinecone index.
type PineconeIndex struct {
	conn      pineconeQuerier
	indexName string
}

// NewPineconeIndex connects to the index named in the config. The data-plane
// host is looked up through the control plane unless PINECONE_INDEX_HOST
// pins it.
func NewPineconeIndex(ctx context.Context, cfg *config.Config) (*PineconeIndex, error) {
	e := cfg.EnvVars
	if e.PineconeAPIKey == "" || e.PineconeIndexName == "" {
		return nil, fmt.Errorf("%w: Pinecone API key and index name must be set", models.ErrConfiguration)
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: e.PineconeAPIKey})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Pinecone client: %v", models.ErrConfiguration, err)
	}

	host := e.PineconeIndexHost
	if host == "" {
		idx, err := pc.DescribeIndex(ctx, e.PineconeIndexName)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to describe index %q: %w", models.ErrIndexUnavailable, e.PineconeIndexName, err)
		}
		host = idx.Host
	}

	conn, err := pc.Index(pinecone.NewIndexConnParams{Host: host, Namespace: e.PineconeNamespace})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to index %q: %w", models.ErrIndexUnavailable, e.PineconeIndexName, err)
	}

	logger.Get().Info("connected to Pinecone index",
		zap.String("index", e.PineconeIndexName),
		zap.String("host", host),
		zap.String("namespace", e.PineconeNamespace),
	)

	return newPineconeIndex(conn, e.PineconeIndexName), nil
}

func newPineconeIndex(conn pineconeQuerier, indexName string) *PineconeIndex {
	return &PineconeIndex{conn: conn, indexName: indexName}
}

// Query returns up to topK matches with their metadata, in Pinecone's order.
func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error) {
	if err := ValidateTopK(topK); err != nil {
		return nil, err
	}

	resp, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeValues:   true,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %w", models.ErrIndexUnavailable, p.indexName, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: query %q returned no response", models.ErrMalformedResponse, p.indexName)
	}

	matches := make([]models.RecipeMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil || m.Vector.Id == "" {
			logger.FromContext(ctx).Warn("skipping index match without an id", zap.String("index", p.indexName))
			continue
		}
		metadata := map[string]any{}
		if m.Vector.Metadata != nil {
			metadata = m.Vector.Metadata.AsMap()
		}
		matches = append(matches, models.RecipeMatch{
			ID:       m.Vector.Id,
			Score:    float64(m.Score),
			Metadata: metadata,
		})
	}
	return matches, nil
}
