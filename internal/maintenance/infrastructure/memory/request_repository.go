package memory

import (
	"context"
	"sort"
	"sync"

	maintenance "solar-portal/internal/maintenance/domain"
)

// RequestRepository is an in-memory repository for maintenance requests.
type RequestRepository struct {
	mu   sync.RWMutex
	data map[string]*maintenance.Request
}

// NewRequestRepository constructs a repository.
func NewRequestRepository() *RequestRepository {
	return &RequestRepository{data: make(map[string]*maintenance.Request)}
}

// Get loads a request by id.
func (r *RequestRepository) Get(ctx context.Context, id string) (*maintenance.Request, error) {
	_ = ctx
	r.mu.RLock()
	req := r.data[id]
	r.mu.RUnlock()
	if req == nil {
		return nil, maintenance.ErrNotFound
	}
	return req.Clone(), nil
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, request *maintenance.Request) error {
	_ = ctx
	if request == nil || request.ID == "" {
		return maintenance.ErrInvalidRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[request.ID]; ok {
		return maintenance.ErrInvalidRequest
	}
	r.data[request.ID] = request.Clone()
	return nil
}

// Update applies fn to the stored record under the repository lock.
func (r *RequestRepository) Update(ctx context.Context, id string, fn func(*maintenance.Request) error) (*maintenance.Request, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.data[id]
	if current == nil {
		return nil, maintenance.ErrNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.data[id] = next
	return next.Clone(), nil
}

// List returns requests, optionally filtered by status, newest first.
func (r *RequestRepository) List(ctx context.Context, status maintenance.Status) ([]*maintenance.Request, error) {
	_ = ctx
	r.mu.RLock()
	out := make([]*maintenance.Request, 0, len(r.data))
	for _, req := range r.data {
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, req.Clone())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
