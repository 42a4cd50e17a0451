// Package store holds the append-only enrollment record stores.
//
// Error Contract:
//   - Append returns the stored record, or a wrapped infrastructure error.
//   - List returns every record in insertion order; an empty store yields an empty slice.
//   - The in-memory store cannot fail short of exhausting memory.
package store

import (
	"fmt"

	"matricula/internal/enrollment/models"
	"matricula/pkg/platform/sentinel"
)

// maxIDAttempts bounds retries when a generated id collides with a stored one.
const maxIDAttempts = 3

// IDGenerator produces record identifiers. Tests swap it to force collisions.
type IDGenerator func() models.RecordID

var errIDCollision = fmt.Errorf("record id collision: %w", sentinel.ErrConflict)
