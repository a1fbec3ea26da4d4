package models

import (
	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
)

// Metadata keys stored alongside every indexed recipe vector.
const (
	MetaName         = "name"
	MetaIngredients  = "ingredients"
	MetaAmounts      = "amounts"
	MetaUnits        = "units"
	MetaInstructions = "instructions"
	MetaCookTime     = "cook_time"
	MetaPrepTime     = "prep_time"
	MetaDescription  = "description"
)

// RecipeMatch is a single nearest-neighbour hit from the vector index. It is a
// read-only view over index data; metadata values are usually strings, some of
// which encode lists as "['a', 'b']".
type RecipeMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// Ingredients returns the raw ingredients metadata value, or nil.
func (m RecipeMatch) Ingredients() any {
	if m.Metadata == nil {
		return nil
	}
	return m.Metadata[MetaIngredients]
}

// RecipeVector is the model for a recipe row in the pgvector-backed index.
type RecipeVector struct {
	ID           string          `gorm:"primaryKey"`
	Name         string          `gorm:"column:name"`
	Description  string          `gorm:"column:description"`
	Ingredients  pq.StringArray  `gorm:"type:text[];column:ingredients"`
	Amounts      pq.StringArray  `gorm:"type:text[];column:amounts"`
	Units        pq.StringArray  `gorm:"type:text[];column:units"`
	Instructions pq.StringArray  `gorm:"type:text[];column:instructions"`
	CookTime     string          `gorm:"column:cook_time"`
	PrepTime     string          `gorm:"column:prep_time"`
	Embedding    pgvector.Vector `gorm:"type:vector" json:"-"`
}

// TableName pins the table the recipe ETL writes to.
func (RecipeVector) TableName() string {
	return "recipe_vectors"
}

// Metadata flattens the row into the same metadata shape the hosted index returns.
func (rv RecipeVector) Metadata() map[string]any {
	return map[string]any{
		MetaName:         rv.Name,
		MetaDescription:  rv.Description,
		MetaIngredients:  []string(rv.Ingredients),
		MetaAmounts:      []string(rv.Amounts),
		MetaUnits:        []string(rv.Units),
		MetaInstructions: []string(rv.Instructions),
		MetaCookTime:     rv.CookTime,
		MetaPrepTime:     rv.PrepTime,
	}
}
