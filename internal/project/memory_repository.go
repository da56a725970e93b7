package project

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use GormRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewInMemoryRepository creates a new in-memory project repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		projects: make(map[string]*Project),
	}
}

// Get retrieves a project with its locations.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return clone(p, true), nil
}

// List retrieves projects ordered by ID.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.projects))
	for id := range r.projects {
		if id > opts.Cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{}
	for i, id := range ids {
		if i == limit {
			result.NextCursor = ids[limit-1]
			break
		}
		result.Items = append(result.Items, clone(r.projects[id], false))
	}

	return result, nil
}

// Create stores a new project.
func (r *InMemoryRepository) Create(_ context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.projects[p.ID] = clone(p, true)
	return nil
}

// AddLocation stores a location under an existing project.
func (r *InMemoryRepository) AddLocation(_ context.Context, l *Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[l.ProjectID]
	if !ok {
		return ErrProjectNotFound
	}
	p.Locations = append(p.Locations, *l)
	return nil
}

func clone(p *Project, withLocations bool) *Project {
	cpy := *p
	cpy.Locations = nil
	if withLocations && len(p.Locations) > 0 {
		cpy.Locations = append([]Location(nil), p.Locations...)
	}
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
