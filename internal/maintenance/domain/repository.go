package maintenance

import "context"

// Repository persists maintenance requests.
type Repository interface {
	Get(ctx context.Context, id string) (*Request, error)
	Create(ctx context.Context, request *Request) error
	// Update loads the request, applies fn under per-record serialization
	// and persists the result when fn returns nil.
	Update(ctx context.Context, id string, fn func(*Request) error) (*Request, error)
	// List returns requests filtered by status; an empty status means all.
	List(ctx context.Context, status Status) ([]*Request, error)
}
