package models

import "github.com/asaskevich/govalidator"

// Bounds for SearchRequest.MaxTimeMinutes.
const (
	MinTimeMinutes = 5
	MaxTimeMinutes = 120
)

// SearchEnvelope is the request body consumed by the recommender.
type SearchEnvelope struct {
	User    UserProfile   `json:"user"`
	Request SearchRequest `json:"request"`
}

// SearchRequest holds the constraints for a single recommendation.
type SearchRequest struct {
	IngredientsAvailable []string    `json:"ingredients_available"`
	MaxTimeMinutes       int         `json:"max_time_minutes,omitempty"`
	MealType             MealType    `json:"meal_type,omitempty"`
	Preferences          Preferences `json:"preferences"`
}

// Preferences are the optional taste constraints of a request.
type Preferences struct {
	SpiceLevel SpiceLevel `json:"spice_level,omitempty"`
	DietType   DietType   `json:"diet_type,omitempty"`
}

// MealType is the type for the MealType enum.
type MealType string

// MealType enum values.
const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
	MealDessert   MealType = "Dessert"
)

// IsValid checks if the MealType is valid.
func (m MealType) IsValid() bool {
	return govalidator.IsIn(string(m),
		string(MealBreakfast), string(MealLunch), string(MealDinner), string(MealSnack), string(MealDessert))
}

// SpiceLevel is the type for the SpiceLevel enum.
type SpiceLevel string

// SpiceLevel enum values.
const (
	SpiceMild    SpiceLevel = "mild"
	SpiceMedium  SpiceLevel = "medium"
	SpiceHot     SpiceLevel = "hot"
	SpiceVeryHot SpiceLevel = "very hot"
)

// IsValid checks if the SpiceLevel is valid.
func (s SpiceLevel) IsValid() bool {
	return govalidator.IsIn(string(s), string(SpiceMild), string(SpiceMedium), string(SpiceHot), string(SpiceVeryHot))
}

// DietType is the type for the DietType enum.
type DietType string

// DietType enum values.
const (
	DietNone       DietType = "none"
	DietVegetarian DietType = "vegetarian"
	DietVegan      DietType = "vegan"
	DietKeto       DietType = "keto"
	DietPaleo      DietType = "paleo"
	DietGlutenFree DietType = "gluten-free"
	DietDairyFree  DietType = "dairy-free"
)

// IsValid checks if the DietType is valid.
func (d DietType) IsValid() bool {
	return govalidator.IsIn(string(d),
		string(DietNone), string(DietVegetarian), string(DietVegan), string(DietKeto),
		string(DietPaleo), string(DietGlutenFree), string(DietDairyFree))
}
