package metering

import "context"

// Repository persists metering applications keyed by reference code.
type Repository interface {
	// Get loads an application. Unknown codes return ErrNotFound.
	Get(ctx context.Context, referenceCode string) (*Application, error)
	// Exists reports whether a reference code is already tracked.
	Exists(ctx context.Context, referenceCode string) (bool, error)
	// Create inserts a new application; a duplicate code returns
	// ErrAlreadyExists.
	Create(ctx context.Context, app *Application) error
	// Update runs fn on the current record under an exclusive per-record
	// scope and persists the result. Concurrent updates on the same code are
	// serialized; a lost race returns ErrConflict.
	Update(ctx context.Context, referenceCode string, fn func(*Application) error) (*Application, error)
	// List returns applications, optionally filtered by status, newest first.
	List(ctx context.Context, status Status) ([]*Application, error)
}
