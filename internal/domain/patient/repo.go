package patient

import (
	"context"
)

// Repository is the patient data-access layer: one parameterized statement
// per operation, no transactions, no retries. Lookups that match nothing
// return (nil, nil) rather than an error; engine failures come back as a
// StorageError with the engine's message intact.
type Repository interface {
	// Create inserts one row and fills in the generated id and timestamp.
	Create(ctx context.Context, p *Patient) error
	// List returns all patients, most recently created first.
	List(ctx context.Context) ([]*Patient, error)
	// GetByID returns the matching patient, or (nil, nil) when absent.
	GetByID(ctx context.Context, id int) (*Patient, error)
	// Update fully replaces the four mutable fields and returns the updated
	// row, or (nil, nil) when id matches nothing.
	Update(ctx context.Context, id int, p *Patient) (*Patient, error)
}
