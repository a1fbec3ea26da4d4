package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/windoze95/saltybytes-finder/internal/models"
)

func TestMemoryIndex_QueryRanksByCosine(t *testing.T) {
	idx := NewMemoryIndex(2)
	_ = idx.Upsert("far", []float32{0, 1}, map[string]any{"name": "Far"})
	_ = idx.Upsert("near", []float32{1, 0.1}, map[string]any{"name": "Near"})
	_ = idx.Upsert("exact", []float32{2, 0}, map[string]any{"name": "Exact"})

	got, err := idx.Query(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "exact" || got[1].ID != "near" {
		t.Errorf("order = [%s %s], want [exact near]", got[0].ID, got[1].ID)
	}
	if got[0].Score < 0.999 {
		t.Errorf("exact score = %v, want ~1", got[0].Score)
	}
	if got[0].Metadata["name"] != "Exact" {
		t.Errorf("metadata = %v", got[0].Metadata)
	}
}

func TestMemoryIndex_EqualScoresKeepInsertionOrder(t *testing.T) {
	idx := NewMemoryIndex(0)
	for _, id := range []string{"b", "a", "c"} {
		if err := idx.Upsert(id, []float32{1, 1}, nil); err != nil {
			t.Fatal(err)
		}
	}
	got, err := idx.Query(context.Background(), []float32{1, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != "b" || got[1].ID != "a" || got[2].ID != "c" {
		t.Errorf("got %v, want insertion order b a c", []string{got[0].ID, got[1].ID, got[2].ID})
	}
}

func TestMemoryIndex_UpsertReplaces(t *testing.T) {
	idx := NewMemoryIndex(0)
	_ = idx.Upsert("r1", []float32{1, 0}, map[string]any{"name": "old"})
	_ = idx.Upsert("r1", []float32{0, 1}, map[string]any{"name": "new"})
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
	got, _ := idx.Query(context.Background(), []float32{0, 1}, 1)
	if got[0].Metadata["name"] != "new" {
		t.Errorf("metadata = %v", got[0].Metadata)
	}
}

func TestMemoryIndex_Errors(t *testing.T) {
	idx := NewMemoryIndex(2)
	if err := idx.Upsert("r1", []float32{1, 2, 3}, nil); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("dimension mismatch on upsert: err = %v", err)
	}
	if err := idx.Upsert("", []float32{1, 2}, nil); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("empty id: err = %v", err)
	}
	if _, err := idx.Query(context.Background(), []float32{1}, 5); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("query dimension mismatch: err = %v", err)
	}
	if _, err := idx.Query(context.Background(), []float32{1, 0}, 0); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("top_k 0: err = %v", err)
	}
	if _, err := idx.Query(context.Background(), []float32{1, 0}, 101); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("top_k 101: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := idx.Query(ctx, []float32{1, 0}, 5); !errors.Is(err, models.ErrIndexUnavailable) {
		t.Errorf("canceled: err = %v", err)
	}
}

func TestLoadMemoryIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	seed := `recipes:
  - id: "101"
    vector: [1, 0, 0]
    metadata:
      name: Fried Rice
      ingredients: "['rice', 'eggs', 'soy sauce']"
      cook_time: "15"
  - id: "102"
    vector: [0, 1, 0]
    metadata:
      name: Peanut Noodles
      ingredients: [noodles, peanuts]
`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	idx, err := LoadMemoryIndex(path, 3)
	if err != nil {
		t.Fatalf("LoadMemoryIndex: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len = %d, want 2", idx.Len())
	}

	got, err := idx.Query(context.Background(), []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != "102" {
		t.Errorf("ID = %q, want 102", got[0].ID)
	}
	if _, ok := got[0].Ingredients().([]any); !ok {
		t.Errorf("ingredients = %T, want []any", got[0].Ingredients())
	}
}

func TestLoadMemoryIndex_Errors(t *testing.T) {
	if _, err := LoadMemoryIndex(filepath.Join(t.TempDir(), "missing.yaml"), 0); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("missing file: err = %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("recipes:\n  - id: \"1\"\n    vector: [1, 2]\n  - id: \"2\"\n    vector: [1]\n"), 0o600)
	if _, err := LoadMemoryIndex(path, 0); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("mixed dimensions: err = %v", err)
	}
}
