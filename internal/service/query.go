package service

import (
	"strconv"
	"strings"

	"github.com/windoze95/saltybytes-finder/internal/models"
)

// Compose builds the canonical query text the embedding model was tuned on.
// Tokens are emitted in a fixed order: macros, available ingredients, likes,
// dislikes ("no x"), allergies ("allergy x"), max time, meal type, spice
// level, diet type. Empty fields contribute nothing.
func Compose(profile models.UserProfile, req models.SearchRequest) string {
	var parts []string

	for _, m := range profile.Macros.Targets() {
		if level := strings.TrimSpace(string(m.Level)); level != "" {
			parts = append(parts, level+" "+m.Name)
		}
	}

	parts = appendItems(parts, "", req.IngredientsAvailable)
	parts = appendItems(parts, "", profile.Likes)
	parts = appendItems(parts, "no ", profile.Dislikes)
	parts = appendItems(parts, "allergy ", profile.Allergies)

	if req.MaxTimeMinutes > 0 {
		parts = append(parts, "max_time "+strconv.Itoa(req.MaxTimeMinutes))
	}
	if meal := strings.TrimSpace(string(req.MealType)); meal != "" {
		parts = append(parts, meal)
	}
	if spice := strings.TrimSpace(string(req.Preferences.SpiceLevel)); spice != "" {
		parts = append(parts, "spice "+spice)
	}
	if diet := strings.TrimSpace(string(req.Preferences.DietType)); diet != "" {
		parts = append(parts, diet)
	}

	return strings.Join(parts, " ")
}

func appendItems(parts []string, prefix string, items []string) []string {
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			parts = append(parts, prefix+item)
		}
	}
	return parts
}
