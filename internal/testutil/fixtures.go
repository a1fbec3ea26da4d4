package testutil

import (
	"time"

	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

// TestConfig returns a config with the defaults LoadConfig would produce.
func TestConfig() *config.Config {
	return &config.Config{EnvVars: config.EnvVars{
		Port:              "8080",
		EmbeddingProvider: config.EmbeddingProviderSageMaker,
		IndexBackend:      config.IndexBackendMemory,
		TopK:              config.DefaultTopK,
		EmbeddingTimeout:  10 * time.Second,
		IndexTimeout:      5 * time.Second,
		RetryMaxAttempts:  2,
	}}
}

// TestProfile creates the user profile used across pipeline tests.
func TestProfile() models.UserProfile {
	return models.UserProfile{
		Username:  "u1",
		Allergies: []string{"peanuts"},
		Dislikes:  []string{"mushrooms"},
		Macros: models.Macros{
			Protein: models.MacroHigh,
			Carbs:   models.MacroLow,
			Fats:    models.MacroMedium,
		},
	}
}

// TestRequest creates a dinner request with every field populated.
func TestRequest() models.SearchRequest {
	return models.SearchRequest{
		IngredientsAvailable: []string{"rice", "chicken"},
		MaxTimeMinutes:       30,
		MealType:             models.MealDinner,
		Preferences: models.Preferences{
			SpiceLevel: models.SpiceMedium,
			DietType:   models.DietNone,
		},
	}
}

// TestMatches returns three index matches, the second of which contains peanuts.
func TestMatches() []models.RecipeMatch {
	return []models.RecipeMatch{
		{
			ID:    "101",
			Score: 0.92,
			Metadata: map[string]any{
				models.MetaName:        "Chicken Fried Rice",
				models.MetaIngredients: "['rice', 'chicken', 'eggs', 'soy sauce']",
				models.MetaCookTime:    "20",
			},
		},
		{
			ID:    "102",
			Score: 0.90,
			Metadata: map[string]any{
				models.MetaName:        "Satay Chicken",
				models.MetaIngredients: "['chicken', 'Peanuts', 'coconut milk']",
				models.MetaCookTime:    "25",
			},
		},
		{
			ID:    "103",
			Score: 0.85,
			Metadata: map[string]any{
				models.MetaName:        "Chicken and Rice Soup",
				models.MetaIngredients: "chicken, rice, carrots, celery",
				models.MetaCookTime:    "30",
			},
		},
	}
}
