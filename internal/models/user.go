package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
)

// UserProfile is the per-request description of the person asking for recipes.
// It is never persisted.
type UserProfile struct {
	Username     string        `json:"username"`
	Allergies    []string      `json:"allergies"`
	Likes        []string      `json:"likes"`
	Dislikes     []string      `json:"dislikes"`
	Macros       Macros        `json:"macros"`
	RecipesTried []TriedRecipe `json:"recipes_tried"`
}

// MacroLevel is the type for the MacroLevel enum.
type MacroLevel string

// MacroLevel enum values.
const (
	MacroLow    MacroLevel = "low"
	MacroMedium MacroLevel = "medium"
	MacroHigh   MacroLevel = "high"
)

// IsValid checks if the MacroLevel is one of the known levels.
func (l MacroLevel) IsValid() bool {
	return govalidator.IsIn(string(l), string(MacroLow), string(MacroMedium), string(MacroHigh))
}

// Macros holds the user's macronutrient targets. An empty level means the
// user expressed no preference.
type Macros struct {
	Protein MacroLevel `json:"protein,omitempty"`
	Carbs   MacroLevel `json:"carbs,omitempty"`
	Fats    MacroLevel `json:"fats,omitempty"`
}

// MacroTarget is a single named macro level.
type MacroTarget struct {
	Name  string
	Level MacroLevel
}

// Targets returns the macros in their canonical order: protein, carbs, fats.
func (m Macros) Targets() []MacroTarget {
	return []MacroTarget{
		{Name: "protein", Level: m.Protein},
		{Name: "carbs", Level: m.Carbs},
		{Name: "fats", Level: m.Fats},
	}
}

// TriedRecipe is a rating the client supplies for a recipe the user has cooked.
type TriedRecipe struct {
	RecipeID RecipeID `json:"recipe_id"`
	Rating   Rating   `json:"rating"`
}

// RecipeID identifies a recipe. Clients send either an integer or a string;
// numeric ids are written back out as integers.
type RecipeID string

// UnmarshalJSON accepts a JSON number or string.
func (id *RecipeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RecipeID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("recipe_id must be an integer or a string: %w", err)
	}
	*id = RecipeID(n.String())
	return nil
}

// MarshalJSON writes integer ids as numbers and everything else as strings.
func (id RecipeID) MarshalJSON() ([]byte, error) {
	if id != "" && govalidator.IsInt(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Rating is a 1..5 score. On the wire it is usually the string "1".."5".
type Rating int

// UnmarshalJSON accepts "3" or 3.
func (r *Rating) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("rating %q is not a number", s)
		}
		*r = Rating(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("rating must be a number: %w", err)
	}
	*r = Rating(n)
	return nil
}

// MarshalJSON writes the rating in its string form.
func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(r)))
}

// IsValid checks if the rating is within 1..5.
func (r Rating) IsValid() bool {
	return govalidator.InRangeInt(int(r), 1, 5)
}
