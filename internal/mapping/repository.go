package mapping

import (
	"context"
	"fmt"
)

// ListOptions contains options for listing maps.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing maps.
type ListResult struct {
	Items      []*Map
	NextCursor string

	// Skipped holds rows of the page whose stored JSON could not be decoded.
	// They are left out of Items but still advance the cursor.
	Skipped []*DecodeError
}

// DecodeError reports a stored map whose objects or work area could not be
// decoded.
type DecodeError struct {
	ID  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("map %s: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Repository defines the interface for map persistence.
type Repository interface {
	// Get retrieves a map by ID.
	Get(ctx context.Context, id string) (*Map, error)

	// ListByProject retrieves the maps of a project ordered by ID.
	ListByProject(ctx context.Context, projectID string, opts ListOptions) (*ListResult, error)

	// Scan pages through all maps ordered by ID, starting after cursor.
	Scan(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create stores a new map.
	Create(ctx context.Context, m *Map) error

	// Update rewrites an existing map. The work area is always written in
	// its current form.
	Update(ctx context.Context, m *Map) error

	// Delete deletes a map by ID.
	Delete(ctx context.Context, id string) error
}
