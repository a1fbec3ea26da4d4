package ai

import (
	"encoding/json"
	"fmt"

	"github.com/windoze95/saltybytes-finder/internal/models"
)

// maxNestingDepth bounds how far extractPrimaryEmbedding descends into
// nested lists (batch -> token -> vector is three levels).
const maxNestingDepth = 4

// extractPrimaryEmbedding picks the text representation out of an inference
// response body.
//
// A flat list of numbers is returned as-is. Feature-extraction endpoints
// return per-token vectors ([[[...], [...]]]); for those the first non-empty
// token vector stands in for a pooled sentence embedding. That is an
// approximation, kept here so a pooling strategy can replace it without
// touching transport code. Objects with an "embedding" or "embeddings" field
// are unwrapped first.
func extractPrimaryEmbedding(body []byte) ([]float32, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: response is not JSON: %v", models.ErrMalformedResponse, err)
	}
	return firstVector(raw, 0)
}

// firstVector walks node depth-first and returns the first non-empty list of
// numbers it finds.
func firstVector(node any, depth int) ([]float32, error) {
	if depth > maxNestingDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d levels", models.ErrMalformedResponse, maxNestingDepth)
	}

	switch v := node.(type) {
	case map[string]any:
		if inner, ok := v["embedding"]; ok {
			return firstVector(inner, depth+1)
		}
		if inner, ok := v["embeddings"]; ok {
			return firstVector(inner, depth+1)
		}
		return nil, fmt.Errorf("%w: object response has no embedding field", models.ErrMalformedResponse)
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty list at depth %d", models.ErrMalformedResponse, depth)
		}
		if _, isNumber := v[0].(float64); isNumber {
			return toVector(v)
		}
		var firstErr error
		for _, elem := range v {
			vec, err := firstVector(elem, depth+1)
			if err == nil {
				return vec, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, firstErr
	default:
		return nil, fmt.Errorf("%w: unexpected %T at depth %d", models.ErrMalformedResponse, node, depth)
	}
}

func toVector(list []any) ([]float32, error) {
	vec := make([]float32, len(list))
	for i, item := range list {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, not a number", models.ErrMalformedResponse, i, item)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

// checkDimension rejects empty vectors and, when dimension is set, vectors of
// any other length.
func checkDimension(vec []float32, dimension int) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: embedding is empty", models.ErrMalformedResponse)
	}
	if dimension > 0 && len(vec) != dimension {
		return fmt.Errorf("%w: embedding has %d dimensions, index expects %d", models.ErrMalformedResponse, len(vec), dimension)
	}
	return nil
}
