package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

// Postgres error classes that mean the schema or extension is missing rather
// than the database being unreachable.
var schemaErrorCodes = map[pq.ErrorCode]bool{
	"42P01": true, // undefined_table
	"42703": true, // undefined_column
	"42883": true, // undefined_function, e.g. <=> without the vector extension
	"22000": true, // data_exception, raised by pgvector on dimension mismatch
}

// classifyDBError maps a database failure onto the error taxonomy.
func classifyDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", models.ErrIndexUnavailable, op, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && schemaErrorCodes[pqErr.Code] {
		return fmt.Errorf("%w: %s: %v", models.ErrConfiguration, op, err)
	}
	return fmt.Errorf("%w: %s: %w", models.ErrIndexUnavailable, op, err)
}
