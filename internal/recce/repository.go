package recce

import (
	"context"
	"fmt"
)

// ListOptions contains options for listing recces.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing recces.
type ListResult struct {
	Items      []*Document
	NextCursor string

	// Skipped holds rows of the page whose stored body could not be decoded.
	// They are left out of Items but still advance the cursor.
	Skipped []*DecodeError
}

// DecodeError reports a stored recce whose body could not be decoded.
type DecodeError struct {
	ID  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("recce %s: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Repository defines the interface for recce persistence.
type Repository interface {
	// Get retrieves a recce by ID.
	Get(ctx context.Context, id string) (*Document, error)

	// ListByProject retrieves the recces of a project ordered by ID.
	ListByProject(ctx context.Context, projectID string, opts ListOptions) (*ListResult, error)

	// Scan pages through all recces ordered by ID, starting after cursor.
	Scan(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create stores a new recce.
	Create(ctx context.Context, d *Document) error

	// Update rewrites an existing recce in the current layout.
	Update(ctx context.Context, d *Document) error

	// Delete deletes a recce by ID.
	Delete(ctx context.Context, id string) error
}
