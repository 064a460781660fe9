package appointment

import (
	"context"
)

// Repository is the appointment data-access layer. Semantics mirror the
// patient repository: single statements, (nil, nil) for unmatched lookups,
// StorageError for engine failures, including foreign-key violations when
// the referenced patient does not exist.
type Repository interface {
	// Create inserts one row with the engine-default status and fills in the
	// generated fields.
	Create(ctx context.Context, a *Appointment) error
	// List returns all appointments joined with their patient's name,
	// ordered by appointment date ascending.
	List(ctx context.Context) ([]*WithPatient, error)
	// UpdateStatus replaces the status field only and returns the updated
	// row, or (nil, nil) when id matches nothing.
	UpdateStatus(ctx context.Context, id int, status string) (*Appointment, error)
}
