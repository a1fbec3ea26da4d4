package service

import (
	"strings"

	"github.com/windoze95/saltybytes-finder/internal/models"
)

// Exclusion reasons, also used as metric labels.
const (
	ReasonAllergy    = "allergy"
	ReasonDislike    = "dislike"
	ReasonUnverified = "unverified"
)

// SafetyFilter drops index matches whose ingredients hit the user's
// allergies or dislikes.
type SafetyFilter struct {
	// FailClosed excludes matches whose ingredients are missing or cannot be
	// read. The default keeps them.
	FailClosed bool
}

// Exclusion records why a match was dropped.
type Exclusion struct {
	RecipeID string
	Reason   string
	Token    string
}

// FilterMatches applies the default fail-open SafetyFilter.
func FilterMatches(matches []models.RecipeMatch, allergies, dislikes []string) []models.RecipeMatch {
	kept, _ := SafetyFilter{}.Apply(matches, allergies, dislikes)
	return kept
}

// Apply returns the retained matches in their original order along with an
// entry for each excluded one. Matching is exact on normalized tokens.
func (f SafetyFilter) Apply(matches []models.RecipeMatch, allergies, dislikes []string) ([]models.RecipeMatch, []Exclusion) {
	allergySet := normalizeSet(allergies)
	dislikeSet := normalizeSet(dislikes)

	kept := make([]models.RecipeMatch, 0, len(matches))
	var excluded []Exclusion

	for _, m := range matches {
		tokens, ok := parseIngredients(m.Ingredients())
		if !ok && f.FailClosed {
			excluded = append(excluded, Exclusion{RecipeID: m.ID, Reason: ReasonUnverified})
			continue
		}
		if ex, hit := firstConflict(m.ID, tokens, allergySet, dislikeSet); hit {
			excluded = append(excluded, ex)
			continue
		}
		kept = append(kept, m)
	}
	return kept, excluded
}

func firstConflict(id string, tokens []string, allergies, dislikes map[string]struct{}) (Exclusion, bool) {
	for _, t := range tokens {
		if _, ok := allergies[t]; ok {
			return Exclusion{RecipeID: id, Reason: ReasonAllergy, Token: t}, true
		}
	}
	for _, t := range tokens {
		if _, ok := dislikes[t]; ok {
			return Exclusion{RecipeID: id, Reason: ReasonDislike, Token: t}, true
		}
	}
	return Exclusion{}, false
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

// TokenizeIngredients normalizes an ingredients metadata value into unique
// lowercase tokens in first-seen order. Lists are used element by element;
// strings may be list literals ("['a', 'b']") or plain comma-separated text.
// Anything else yields no tokens.
func TokenizeIngredients(raw any) []string {
	tokens, _ := parseIngredients(raw)
	return tokens
}

// parseIngredients reports ok=false when raw is missing, of an unsupported
// type, or produced no tokens.
func parseIngredients(raw any) ([]string, bool) {
	var items []string
	switch v := raw.(type) {
	case string:
		items = splitIngredientList(v)
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return nil, false
	}

	seen := make(map[string]struct{}, len(items))
	tokens := make([]string, 0, len(items))
	for _, item := range items {
		t := strings.ToLower(strings.TrimSpace(item))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	return tokens, len(tokens) > 0
}

// splitIngredientList drops brackets, parentheses and quote characters and
// splits on every comma. A comma always separates tokens, even inside a
// quoted element, so "['peanuts, crushed']" still yields "peanuts".
func splitIngredientList(s string) []string {
	return strings.Split(listDelimiters.Replace(s), ",")
}

var listDelimiters = strings.NewReplacer("[", "", "]", "", "(", "", ")", "", "'", "", `"`, "")
