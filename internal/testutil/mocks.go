package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/windoze95/saltybytes-finder/internal/models"
)

// --- MockEmbeddingProvider ---

// MockEmbeddingProvider is a mock implementation of ai.EmbeddingProvider.
type MockEmbeddingProvider struct {
	mu    sync.Mutex
	calls int
	texts []string

	GenerateEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbeddingProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.GenerateEmbeddingFunc != nil {
		return m.GenerateEmbeddingFunc(ctx, text)
	}
	return nil, fmt.Errorf("GenerateEmbedding not configured")
}

// Calls returns how many times GenerateEmbedding ran.
func (m *MockEmbeddingProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Texts returns every text passed to GenerateEmbedding.
func (m *MockEmbeddingProvider) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// StaticEmbedder returns a MockEmbeddingProvider that always yields vec.
func StaticEmbedder(vec []float32) *MockEmbeddingProvider {
	return &MockEmbeddingProvider{
		GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
			return vec, nil
		},
	}
}

// --- MockVectorIndex ---

// MockVectorIndex is a mock implementation of repository.VectorIndex.
type MockVectorIndex struct {
	mu    sync.Mutex
	calls int
	topKs []int

	QueryFunc func(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error)
}

func (m *MockVectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error) {
	m.mu.Lock()
	m.calls++
	m.topKs = append(m.topKs, topK)
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, vector, topK)
	}
	return nil, fmt.Errorf("Query not configured")
}

// Calls returns how many times Query ran.
func (m *MockVectorIndex) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// TopKs returns the top_k of every Query call.
func (m *MockVectorIndex) TopKs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.topKs...)
}

// StaticIndex returns a MockVectorIndex that always yields a copy of matches.
func StaticIndex(matches []models.RecipeMatch) *MockVectorIndex {
	return &MockVectorIndex{
		QueryFunc: func(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error) {
			return append([]models.RecipeMatch(nil), matches...), nil
		},
	}
}
