package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

// RecipeVectorFromSeed maps a seed entry onto a pgvector row. List fields
// accept either a YAML sequence or a single string.
func RecipeVectorFromSeed(r MemorySeedRecipe) models.RecipeVector {
	return models.RecipeVector{
		ID:           r.ID,
		Name:         stringField(r.Metadata, models.MetaName),
		Description:  stringField(r.Metadata, models.MetaDescription),
		Ingredients:  listField(r.Metadata, models.MetaIngredients),
		Amounts:      listField(r.Metadata, models.MetaAmounts),
		Units:        listField(r.Metadata, models.MetaUnits),
		Instructions: listField(r.Metadata, models.MetaInstructions),
		CookTime:     stringField(r.Metadata, models.MetaCookTime),
		PrepTime:     stringField(r.Metadata, models.MetaPrepTime),
		Embedding:    pgvector.NewVector(r.Vector),
	}
}

// SeedVectors upserts every seed entry and returns how many were written.
func SeedVectors(ctx context.Context, repo *VectorRepository, seed *MemorySeed) (int, error) {
	written := 0
	for _, r := range seed.Recipes {
		if len(r.Vector) == 0 {
			return written, fmt.Errorf("%w: recipe %q has no vector", models.ErrConfiguration, r.ID)
		}
		row := RecipeVectorFromSeed(r)
		if err := repo.Upsert(ctx, &row); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func stringField(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func listField(meta map[string]any, key string) pq.StringArray {
	switch v := meta[key].(type) {
	case []any:
		out := make(pq.StringArray, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return pq.StringArray(v)
	case string:
		if v == "" {
			return nil
		}
		return pq.StringArray{v}
	default:
		return nil
	}
}
