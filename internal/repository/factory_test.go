package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

func TestNewVectorIndex_Memory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recipes:\n  - id: \"1\"\n    vector: [1, 0]\n    metadata: {name: Toast}\n"), 0o600))

	cfg := &config.Config{EnvVars: config.EnvVars{
		IndexBackend:     config.IndexBackendMemory,
		MemoryIndexFile:  path,
		RetryMaxAttempts: 2,
	}}
	idx, err := NewVectorIndex(context.Background(), cfg, nil)
	require.NoError(t, err)

	got, err := idx.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Toast", got[0].Metadata["name"])
}

func TestNewVectorIndex_Misconfigured(t *testing.T) {
	cases := map[string]config.EnvVars{
		"unknown backend":      {IndexBackend: "faiss"},
		"pgvector without db":  {IndexBackend: config.IndexBackendPgvector},
		"pinecone without key": {IndexBackend: config.IndexBackendPinecone},
		"missing seed file":    {IndexBackend: config.IndexBackendMemory, MemoryIndexFile: "/nonexistent/seed.yaml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewVectorIndex(context.Background(), &config.Config{EnvVars: env}, nil)
			assert.True(t, errors.Is(err, models.ErrConfiguration), "err = %v", err)
		})
	}
}
