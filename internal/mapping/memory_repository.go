package mapping

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/danisampedro/locationapp/internal/spatial"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Work areas are kept encoded so reads normalize them like the Postgres
// repository does. This is intended for testing.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]memoryRow
}

type memoryRow struct {
	m        Map
	workArea json.RawMessage
}

// NewInMemoryRepository creates a new in-memory map repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: make(map[string]memoryRow),
	}
}

// Get retrieves a map by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrMapNotFound
	}
	m, err := row.decode()
	if err != nil {
		return nil, &DecodeError{ID: id, Err: err}
	}
	return m, nil
}

// ListByProject retrieves the maps of a project ordered by ID.
func (r *InMemoryRepository) ListByProject(_ context.Context, projectID string, opts ListOptions) (*ListResult, error) {
	return r.list(opts, func(m *Map) bool { return m.ProjectID == projectID })
}

// Scan pages through all maps ordered by ID.
func (r *InMemoryRepository) Scan(_ context.Context, opts ListOptions) (*ListResult, error) {
	return r.list(opts, func(*Map) bool { return true })
}

func (r *InMemoryRepository) list(opts ListOptions, keep func(*Map) bool) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rows))
	for id, row := range r.rows {
		if id > opts.Cursor && keep(&row.m) {
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
		m, err := r.rows[id].decode()
		if err != nil {
			result.Skipped = append(result.Skipped, &DecodeError{ID: id, Err: err})
			continue
		}
		result.Items = append(result.Items, m)
	}
	return result, nil
}

// Create stores a new map.
func (r *InMemoryRepository) Create(_ context.Context, m *Map) error {
	raw, err := json.Marshal(m.WorkArea)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[m.ID] = memoryRow{m: copyMap(m), workArea: raw}
	return nil
}

// Update rewrites an existing map.
func (r *InMemoryRepository) Update(_ context.Context, m *Map) error {
	raw, err := json.Marshal(m.WorkArea)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[m.ID]; !ok {
		return ErrMapNotFound
	}
	r.rows[m.ID] = memoryRow{m: copyMap(m), workArea: raw}
	return nil
}

// Delete deletes a map by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrMapNotFound
	}
	delete(r.rows, id)
	return nil
}

// PutRaw stores a map with an already encoded work area, in any form
// spatial.NormalizeWorkArea accepts.
func (r *InMemoryRepository) PutRaw(m *Map, workArea []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[m.ID] = memoryRow{m: copyMap(m), workArea: append(json.RawMessage(nil), workArea...)}
}

func (row memoryRow) decode() (*Map, error) {
	wa, err := spatial.NormalizeWorkArea(row.workArea)
	if err != nil {
		return nil, err
	}
	m := copyMap(&row.m)
	m.WorkArea = wa
	return &m, nil
}

func copyMap(m *Map) Map {
	c := *m
	c.Objects = append([]spatial.Object(nil), m.Objects...)
	c.WorkArea = spatial.WorkArea{}
	return c
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
