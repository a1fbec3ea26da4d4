package repository

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/windoze95/saltybytes-finder/internal/models"
	"gopkg.in/yaml.v3"
)

// MemoryIndex is an in-process VectorIndex for local development and tests.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	entries   []memoryEntry
}

type memoryEntry struct {
	id       string
	vector   []float32
	norm     float64
	metadata map[string]any
}

// MemorySeed is the on-disk format read by LoadMemoryIndex.
type MemorySeed struct {
	Recipes []MemorySeedRecipe `yaml:"recipes"`
}

// MemorySeedRecipe is one recipe vector in a seed file.
type MemorySeedRecipe struct {
	ID       string         `yaml:"id"`
	Vector   []float32      `yaml:"vector"`
	Metadata map[string]any `yaml:"metadata"`
}

// NewMemoryIndex creates an empty index. A dimension of 0 is fixed by the
// first upsert.
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{dimension: dimension}
}

// ReadMemorySeed parses a YAML seed file.
func ReadMemorySeed(path string) (*MemorySeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read seed file: %v", models.ErrConfiguration, err)
	}
	var seed MemorySeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse seed file: %v", models.ErrConfiguration, err)
	}
	return &seed, nil
}

// LoadMemoryIndex reads a YAML seed file into a new MemoryIndex.
func LoadMemoryIndex(path string, dimension int) (*MemoryIndex, error) {
	seed, err := ReadMemorySeed(path)
	if err != nil {
		return nil, err
	}

	idx := NewMemoryIndex(dimension)
	for _, r := range seed.Recipes {
		if err := idx.Upsert(r.ID, r.Vector, r.Metadata); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Upsert stores or replaces a recipe vector.
func (m *MemoryIndex) Upsert(id string, vector []float32, metadata map[string]any) error {
	if id == "" {
		return fmt.Errorf("%w: recipe vector has no id", models.ErrConfiguration)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: recipe %q has no vector", models.ErrConfiguration, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dimension == 0 {
		m.dimension = len(vector)
	}
	if len(vector) != m.dimension {
		return fmt.Errorf("%w: recipe %q has %d dimensions, index has %d", models.ErrConfiguration, id, len(vector), m.dimension)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	entry := memoryEntry{id: id, vector: vector, norm: norm(vector), metadata: metadata}
	for i := range m.entries {
		if m.entries[i].id == id {
			m.entries[i] = entry
			return nil
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

// Len returns the number of stored vectors.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Query ranks every stored vector by cosine similarity. Equal scores keep
// insertion order.
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error) {
	if err := ValidateTopK(topK); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexUnavailable, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dimension != 0 && len(vector) != m.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", models.ErrConfiguration, len(vector), m.dimension)
	}

	qNorm := norm(vector)
	matches := make([]models.RecipeMatch, 0, len(m.entries))
	for _, e := range m.entries {
		matches = append(matches, models.RecipeMatch{
			ID:       e.id,
			Score:    cosine(vector, qNorm, e.vector, e.norm),
			Metadata: e.metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
