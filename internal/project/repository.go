package project

import "context"

// ListOptions contains options for listing projects.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing projects.
type ListResult struct {
	Items      []*Project
	NextCursor string
}

// Repository defines the interface for project persistence.
type Repository interface {
	// Get retrieves a project with its locations.
	Get(ctx context.Context, id string) (*Project, error)

	// List retrieves projects ordered by ID, without their locations.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create stores a new project.
	Create(ctx context.Context, p *Project) error

	// AddLocation stores a location under an existing project.
	// Returns ErrProjectNotFound if the project doesn't exist.
	AddLocation(ctx context.Context, l *Location) error
}
