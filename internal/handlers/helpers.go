package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/windoze95/saltybytes-finder/internal/models"
)

// maxBodyBytes caps the size of a recommendation request body.
const maxBodyBytes = 1 << 20

// decodeSearchEnvelope parses a request body. Every failure wraps
// models.ErrValidation.
func decodeSearchEnvelope(body []byte) (models.SearchEnvelope, error) {
	var envelope models.SearchEnvelope
	if len(bytes.TrimSpace(body)) == 0 {
		return envelope, fmt.Errorf("%w: request body is empty", models.ErrValidation)
	}
	if len(body) > maxBodyBytes {
		return envelope, fmt.Errorf("%w: request body exceeds %d bytes", models.ErrValidation, maxBodyBytes)
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return envelope, fmt.Errorf("%w: invalid request body: %v", models.ErrValidation, err)
	}
	return envelope, nil
}
