package mapping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/project"
	"github.com/danisampedro/locationapp/internal/spatial"
	"github.com/danisampedro/locationapp/internal/telemetry"
)

// Validation constants.
const (
	MaxNameLength = 120
	MaxObjects    = 500
)

// ProjectStore loads projects with their locations.
type ProjectStore interface {
	Get(ctx context.Context, id string) (*project.Project, error)
}

// ServiceConfig holds configuration for the map service.
type ServiceConfig struct {
	Repo     Repository
	Projects ProjectStore
	Logger   zerolog.Logger
}

// Service provides map operations.
type Service struct {
	repo     Repository
	projects ProjectStore
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewService creates a new map service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:     cfg.Repo,
		projects: cfg.Projects,
		logger:   cfg.Logger,
		tracer:   telemetry.Tracer("locationapp/mapping"),
	}
}

// List retrieves a page of a project's maps.
func (s *Service) List(ctx context.Context, projectID string, limit int, cursor string) (*models.PagedMaps, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}

	result, err := s.repo.ListByProject(ctx, projectID, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}
	for _, skipped := range result.Skipped {
		s.logger.Warn().Err(skipped.Err).
			Str("map_id", skipped.ID).
			Msg("skipping undecodable map")
	}

	items := make([]models.LocationMap, 0, len(result.Items))
	for _, m := range result.Items {
		items = append(items, toAPIMap(m))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedMaps{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a map.
func (s *Service) Get(ctx context.Context, id string) (*models.LocationMap, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := toAPIMap(m)
	return &result, nil
}

// Create creates an uncalibrated map under an existing project.
func (s *Service) Create(ctx context.Context, projectID string, input *models.MapCreateRequest) (*models.LocationMap, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	fieldErrors := validateMapInput(input)
	if input.LocationID != "" {
		if _, ok := p.FindLocation(input.LocationID); !ok {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "locationId", Message: "is not a location of this project"})
		}
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	m := &Map{
		ID:          "map_" + uuid.New().String()[:22],
		ProjectID:   projectID,
		LocationID:  input.LocationID,
		Name:        strings.TrimSpace(input.Name),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		ImageWidth:  input.ImageWidth,
		ImageHeight: input.ImageHeight,
		Objects:     assignObjectIDs(input.Objects),
		WorkArea:    spatial.NewWorkArea(input.WorkArea.Bounds()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("map_id", m.ID).
		Str("project_id", projectID).
		Int("objects", len(m.Objects)).
		Msg("map created")

	result := toAPIMap(m)
	return &result, nil
}

// Update applies a partial update. Saving rewrites a legacy work area in
// its current form.
func (s *Service) Update(ctx context.Context, id string, input *models.MapUpdateRequest) (*models.LocationMap, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var fieldErrors []models.FieldError
	if input.Name != nil {
		m.Name = strings.TrimSpace(*input.Name)
		fieldErrors = append(fieldErrors, validateName(m.Name)...)
	}
	if input.Objects != nil {
		fieldErrors = append(fieldErrors, validateObjects(*input.Objects)...)
		m.Objects = assignObjectIDs(*input.Objects)
	}
	if input.WorkArea != nil {
		m.WorkArea = spatial.NewWorkArea(input.WorkArea.Bounds())
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	m.WorkArea.Legacy = false
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	result := toAPIMap(m)
	return &result, nil
}

// Delete deletes a map.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Calibrate sets the map scale from two image points a known distance
// apart.
func (s *Service) Calibrate(ctx context.Context, id string, input *models.CalibrationRequest) (*models.LocationMap, error) {
	scale, err := spatial.Calibrate(input.A, input.B, input.DistanceMeters)
	if err != nil {
		field := "distanceMeters"
		if errors.Is(err, spatial.ErrCoincidentPoints) {
			field = "b"
		}
		return nil, &ValidationError{Errors: []models.FieldError{{Field: field, Message: err.Error()}}}
	}

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.Scale = scale
	m.WorkArea.Legacy = false
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("map_id", m.ID).
		Float64("meters_per_pixel", scale).
		Msg("map calibrated")

	result := toAPIMap(m)
	return &result, nil
}

// Metrics computes the occupancy of a calibrated map.
func (s *Service) Metrics(ctx context.Context, id string) (*models.MapMetrics, error) {
	ctx, span := s.tracer.Start(ctx, "mapping.Metrics", trace.WithAttributes(
		attribute.String("map.id", id),
	))
	defer span.End()

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics, err := m.Metrics()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("map.objects", metrics.TotalObjects),
		attribute.Int("map.objects_inside", metrics.InsideObjects),
	)

	return &models.MapMetrics{MapID: m.ID, Metrics: metrics}, nil
}

func validateMapInput(input *models.MapCreateRequest) []models.FieldError {
	errs := validateName(strings.TrimSpace(input.Name))

	if input.ImageWidth <= 0 {
		errs = append(errs, models.FieldError{Field: "imageWidth", Message: "must be positive"})
	}
	if input.ImageHeight <= 0 {
		errs = append(errs, models.FieldError{Field: "imageHeight", Message: "must be positive"})
	}

	return append(errs, validateObjects(input.Objects)...)
}

func validateName(name string) []models.FieldError {
	if name == "" {
		return []models.FieldError{{Field: "name", Message: "is required"}}
	}
	if len(name) > MaxNameLength {
		return []models.FieldError{{Field: "name", Message: "must be at most 120 characters"}}
	}
	return nil
}

func validateObjects(objects []spatial.Object) []models.FieldError {
	var errs []models.FieldError
	if len(objects) > MaxObjects {
		errs = append(errs, models.FieldError{Field: "objects", Message: "must contain at most 500 objects"})
	}
	for i, o := range objects {
		if err := validateObject(o); err != nil {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("objects[%d]", i),
				Message: strings.TrimPrefix(err.Error(), ErrInvalidObject.Error()+": "),
			})
		}
	}
	return errs
}

func validateObject(o spatial.Object) error {
	switch o.Type {
	case spatial.ObjectRectangle:
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("%w: width and height must be positive", ErrInvalidObject)
		}
	case spatial.ObjectCircle:
		if o.Width <= 0 {
			return fmt.Errorf("%w: diameter must be positive", ErrInvalidObject)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidObject, o.Type)
	}
	return nil
}

func assignObjectIDs(objects []spatial.Object) []spatial.Object {
	out := make([]spatial.Object, len(objects))
	copy(out, objects)

	seen := make(map[string]bool, len(out))
	for i := range out {
		if out[i].ID == "" || seen[out[i].ID] {
			out[i].ID = "obj_" + uuid.New().String()[:22]
		}
		seen[out[i].ID] = true
	}
	return out
}

func toAPIMap(m *Map) models.LocationMap {
	objects := m.Objects
	if objects == nil {
		objects = []spatial.Object{}
	}

	return models.LocationMap{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		LocationID:  m.LocationID,
		Name:        m.Name,
		ImageURL:    m.ImageURL,
		ImageWidth:  m.ImageWidth,
		ImageHeight: m.ImageHeight,
		Scale:       m.Scale,
		Calibrated:  m.Calibrated(),
		Objects:     objects,
		WorkArea:    m.WorkArea,
		CreatedAt:   models.Timestamp(m.CreatedAt),
		UpdatedAt:   models.Timestamp(m.UpdatedAt),
	}
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
