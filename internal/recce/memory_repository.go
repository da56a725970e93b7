package recce

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Bodies are kept encoded, so reads go through DecodeContent like the
// Postgres repository. This is intended for testing.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]memoryRow
}

type memoryRow struct {
	doc     Document
	content []byte
}

// NewInMemoryRepository creates a new in-memory recce repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: make(map[string]memoryRow),
	}
}

// Get retrieves a recce by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrRecceNotFound
	}
	d, err := row.decode()
	if err != nil {
		return nil, &DecodeError{ID: id, Err: err}
	}
	return d, nil
}

// ListByProject retrieves the recces of a project ordered by ID.
func (r *InMemoryRepository) ListByProject(_ context.Context, projectID string, opts ListOptions) (*ListResult, error) {
	return r.list(opts, func(d *Document) bool { return d.ProjectID == projectID })
}

// Scan pages through all recces ordered by ID.
func (r *InMemoryRepository) Scan(_ context.Context, opts ListOptions) (*ListResult, error) {
	return r.list(opts, func(*Document) bool { return true })
}

func (r *InMemoryRepository) list(opts ListOptions, keep func(*Document) bool) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rows))
	for id, row := range r.rows {
		if id > opts.Cursor && keep(&row.doc) {
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
		d, err := r.rows[id].decode()
		if err != nil {
			result.Skipped = append(result.Skipped, &DecodeError{ID: id, Err: err})
			continue
		}
		result.Items = append(result.Items, d)
	}
	return result, nil
}

// Create stores a new recce.
func (r *InMemoryRepository) Create(_ context.Context, d *Document) error {
	content, err := EncodeContent(d.Items)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[d.ID] = memoryRow{doc: header(d), content: content}
	return nil
}

// Update rewrites an existing recce.
func (r *InMemoryRepository) Update(_ context.Context, d *Document) error {
	content, err := EncodeContent(d.Items)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[d.ID]; !ok {
		return ErrRecceNotFound
	}
	r.rows[d.ID] = memoryRow{doc: header(d), content: content}
	return nil
}

// Delete deletes a recce by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrRecceNotFound
	}
	delete(r.rows, id)
	return nil
}

// PutRaw stores a recce with an already encoded body, in any layout
// DecodeContent accepts.
func (r *InMemoryRepository) PutRaw(d *Document, content []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[d.ID] = memoryRow{doc: header(d), content: append([]byte(nil), content...)}
}

func (row memoryRow) decode() (*Document, error) {
	d := row.doc
	if err := d.decode(row.content); err != nil {
		return nil, err
	}
	return &d, nil
}

func header(d *Document) Document {
	h := *d
	h.Items = nil
	h.Legacy = false
	return h
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
