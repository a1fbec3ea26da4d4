package repository

import (
	"context"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VectorRepository handles pgvector similarity search operations.
type VectorRepository struct {
	DB *gorm.DB
}

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(db *gorm.DB) *VectorRepository {
	return &VectorRepository{DB: db}
}

type scoredRecipeVector struct {
	models.RecipeVector
	Score float64 `gorm:"column:score"`
}

// Query finds the recipes closest to the given embedding by cosine distance.
// Score is cosine similarity, so higher is closer.
func (r *VectorRepository) Query(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error) {
	if err := ValidateTopK(topK); err != nil {
		return nil, err
	}

	embedding := pgvector.NewVector(vector)

	var rows []scoredRecipeVector
	err := r.DB.WithContext(ctx).
		Model(&models.RecipeVector{}).
		Select("recipe_vectors.*, 1 - (embedding <=> ?) AS score", embedding).
		Where("embedding IS NOT NULL").
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{embedding}}}).
		Limit(topK).
		Find(&rows).Error
	if err != nil {
		return nil, classifyDBError("failed to find similar recipes", err)
	}

	matches := make([]models.RecipeMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, models.RecipeMatch{
			ID:       row.ID,
			Score:    row.Score,
			Metadata: row.Metadata(),
		})
	}
	return matches, nil
}

// Upsert inserts a recipe vector or replaces the row with the same id.
func (r *VectorRepository) Upsert(ctx context.Context, recipe *models.RecipeVector) error {
	if recipe.ID == "" {
		return fmt.Errorf("%w: recipe vector has no id", models.ErrValidation)
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(recipe).Error
	if err != nil {
		return classifyDBError("failed to upsert recipe vector", err)
	}
	return nil
}
