package project

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormRepository is a gorm-backed implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new gorm project repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates or updates the project tables.
func (r *GormRepository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Project{}, &Location{}); err != nil {
		return fmt.Errorf("migrate project tables: %w", err)
	}
	return nil
}

// Get retrieves a project with its locations.
func (r *GormRepository) Get(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).
		Preload("Locations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List retrieves projects ordered by ID.
func (r *GormRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Order("id ASC").Limit(limit + 1)
	if opts.Cursor != "" {
		q = q.Where("id > ?", opts.Cursor)
	}

	var projects []*Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}

	result := &ListResult{Items: projects}
	if len(projects) > limit {
		result.Items = projects[:limit]
		result.NextCursor = projects[limit-1].ID
	}
	return result, nil
}

// Create stores a new project.
func (r *GormRepository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Omit("Locations").Create(p).Error
}

// AddLocation stores a location under an existing project.
func (r *GormRepository) AddLocation(ctx context.Context, l *Location) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Project{}).Where("id = ?", l.ProjectID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProjectNotFound
		}
		return tx.Create(l).Error
	})
}

// Ensure GormRepository implements Repository interface.
var _ Repository = (*GormRepository)(nil)
