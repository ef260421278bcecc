package memory

import (
	"context"
	"sort"
	"sync"

	metering "solar-portal/internal/metering/domain"
)

// ApplicationRepository is an in-memory repository for metering applications.
// Updates on the same reference code are serialized by the repository lock.
type ApplicationRepository struct {
	mu   sync.RWMutex
	data map[string]*metering.Application
}

// NewApplicationRepository constructs a repository.
func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{data: make(map[string]*metering.Application)}
}

// Get loads an application by reference code.
func (r *ApplicationRepository) Get(ctx context.Context, referenceCode string) (*metering.Application, error) {
	_ = ctx
	r.mu.RLock()
	app := r.data[referenceCode]
	r.mu.RUnlock()
	if app == nil {
		return nil, metering.ErrNotFound
	}
	return app.Clone(), nil
}

// Exists reports whether a reference code is taken.
func (r *ApplicationRepository) Exists(ctx context.Context, referenceCode string) (bool, error) {
	_ = ctx
	r.mu.RLock()
	_, ok := r.data[referenceCode]
	r.mu.RUnlock()
	return ok, nil
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *metering.Application) error {
	_ = ctx
	if app == nil || app.ReferenceCode == "" {
		return metering.ErrInvalidApplication
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[app.ReferenceCode]; ok {
		return metering.ErrAlreadyExists
	}
	r.data[app.ReferenceCode] = app.Clone()
	return nil
}

// Update applies fn to the stored record under the repository lock. The
// stored record is replaced only when fn succeeds.
func (r *ApplicationRepository) Update(ctx context.Context, referenceCode string, fn func(*metering.Application) error) (*metering.Application, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.data[referenceCode]
	if current == nil {
		return nil, metering.ErrNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.data[referenceCode] = next
	return next.Clone(), nil
}

// List returns applications, optionally filtered by status, newest first.
func (r *ApplicationRepository) List(ctx context.Context, status metering.Status) ([]*metering.Application, error) {
	_ = ctx
	r.mu.RLock()
	out := make([]*metering.Application, 0, len(r.data))
	for _, app := range r.data {
		if status != "" && app.Status != status {
			continue
		}
		out = append(out, app.Clone())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
