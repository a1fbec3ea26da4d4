package service

import (
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

// ValidateSearch checks a profile and request before any remote call is made.
// Every failure wraps models.ErrValidation.
func ValidateSearch(profile models.UserProfile, req models.SearchRequest) error {
	if strings.TrimSpace(profile.Username) == "" {
		return validationError("username is required")
	}
	if !hasNonBlank(req.IngredientsAvailable) {
		return validationError("ingredients_available must list at least one ingredient")
	}

	for _, m := range profile.Macros.Targets() {
		if m.Level != "" && !m.Level.IsValid() {
			return validationError("macros.%s must be one of low, medium, high, got %q", m.Name, m.Level)
		}
	}
	for i, tried := range profile.RecipesTried {
		if tried.RecipeID == "" {
			return validationError("recipes_tried[%d].recipe_id is required", i)
		}
		if !tried.Rating.IsValid() {
			return validationError("recipes_tried[%d].rating must be between 1 and 5, got %d", i, tried.Rating)
		}
	}

	if req.MaxTimeMinutes != 0 && !govalidator.InRangeInt(req.MaxTimeMinutes, models.MinTimeMinutes, models.MaxTimeMinutes) {
		return validationError("max_time_minutes must be between %d and %d, got %d",
			models.MinTimeMinutes, models.MaxTimeMinutes, req.MaxTimeMinutes)
	}
	if req.MealType != "" && !req.MealType.IsValid() {
		return validationError("meal_type %q is not supported", req.MealType)
	}
	if req.Preferences.SpiceLevel != "" && !req.Preferences.SpiceLevel.IsValid() {
		return validationError("spice_level %q is not supported", req.Preferences.SpiceLevel)
	}
	if req.Preferences.DietType != "" && !req.Preferences.DietType.IsValid() {
		return validationError("diet_type %q is not supported", req.Preferences.DietType)
	}
	return nil
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

func hasNonBlank(items []string) bool {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}
