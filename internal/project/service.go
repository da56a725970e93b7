package project

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/itinerary"
)

// Validation constants.
const (
	MaxNameLength    = 120
	MaxAddressLength = 300
)

// Service provides project operations.
type Service struct {
	repo Repository
}

// NewService creates a new project service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new project.
func (s *Service) Create(ctx context.Context, input *models.ProjectCreateRequest) (*models.Project, error) {
	if fieldErrors := validateProjectInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	p := &Project{
		ID:              "prj_" + uuid.New().String()[:22],
		Name:            strings.TrimSpace(input.Name),
		Company:         strings.TrimSpace(input.Company),
		LocationManager: strings.TrimSpace(input.LocationManager),
		MeetingPoint:    strings.TrimSpace(input.MeetingPoint),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.MeetingCoords != nil {
		p.MeetingLat = &input.MeetingCoords.Lat
		p.MeetingLon = &input.MeetingCoords.Lon
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	result := toAPIProject(p)
	return &result, nil
}

// Get retrieves a project with its locations.
func (s *Service) Get(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := toAPIProject(p)
	return &result, nil
}

// List retrieves a page of projects.
func (s *Service) List(ctx context.Context, limit int, cursor string) (*models.PagedProjects, error) {
	result, err := s.repo.List(ctx, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}

	items := make([]models.Project, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, toAPIProject(p))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedProjects{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// AddLocation adds a candidate location to a project.
func (s *Service) AddLocation(ctx context.Context, projectID string, input *models.LocationCreateRequest) (*models.Location, error) {
	if fieldErrors := validateLocationInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	l := &Location{
		ID:        "loc_" + uuid.New().String()[:22],
		ProjectID: projectID,
		Name:      strings.TrimSpace(input.Name),
		Address:   strings.TrimSpace(input.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Coords != nil {
		l.Lat = &input.Coords.Lat
		l.Lon = &input.Coords.Lon
	}

	if err := s.repo.AddLocation(ctx, l); err != nil {
		return nil, err
	}

	result := toAPILocation(*l)
	return &result, nil
}

// Directory returns the name lookup of a project's locations.
func (s *Service) Directory(ctx context.Context, projectID string) (itinerary.Directory, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return DirectoryOf(p), nil
}

// DirectoryOf builds the location-name lookup of a loaded project.
func DirectoryOf(p *Project) itinerary.Names {
	names := make(itinerary.Names, len(p.Locations))
	for _, l := range p.Locations {
		names[l.ID] = l.Name
	}
	return names
}

func validateProjectInput(input *models.ProjectCreateRequest) []models.FieldError {
	var errs []models.FieldError

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 120 characters"})
	}

	if input.MeetingCoords != nil {
		errs = append(errs, validatePoint(*input.MeetingCoords, "meetingCoords")...)
	}

	return errs
}

func validateLocationInput(input *models.LocationCreateRequest) []models.FieldError {
	var errs []models.FieldError

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs = append(errs, models.FieldError{Field: "nombre", Message: "is required"})
	} else if len(name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "nombre", Message: "must be at most 120 characters"})
	}

	if len(input.Address) > MaxAddressLength {
		errs = append(errs, models.FieldError{Field: "address", Message: "must be at most 300 characters"})
	}

	if input.Coords != nil {
		errs = append(errs, validatePoint(*input.Coords, "coords")...)
	}

	return errs
}

func validatePoint(p models.Point, prefix string) []models.FieldError {
	var errs []models.FieldError
	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, models.FieldError{Field: prefix + ".lat", Message: "must be between -90 and 90"})
	}
	if p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, models.FieldError{Field: prefix + ".lon", Message: "must be between -180 and 180"})
	}
	return errs
}

func toAPIProject(p *Project) models.Project {
	result := models.Project{
		ID:              p.ID,
		Name:            p.Name,
		Company:         p.Company,
		LocationManager: p.LocationManager,
		MeetingPoint:    p.MeetingPoint,
		Locations:       make([]models.Location, 0, len(p.Locations)),
		CreatedAt:       models.Timestamp(p.CreatedAt),
		UpdatedAt:       models.Timestamp(p.UpdatedAt),
	}
	if p.HasMeetingCoords() {
		result.MeetingCoords = &models.Point{Lat: *p.MeetingLat, Lon: *p.MeetingLon}
	}
	for _, l := range p.Locations {
		result.Locations = append(result.Locations, toAPILocation(l))
	}
	return result
}

func toAPILocation(l Location) models.Location {
	result := models.Location{
		ID:        l.ID,
		ProjectID: l.ProjectID,
		Name:      l.Name,
		Address:   l.Address,
		CreatedAt: models.Timestamp(l.CreatedAt),
	}
	if l.HasCoords() {
		result.Coords = &models.Point{Lat: *l.Lat, Lon: *l.Lon}
	}
	return result
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// FieldErrors returns the individual field errors.
func (e *ValidationError) FieldErrors() []models.FieldError {
	return e.Errors
}
