package recce

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
	"github.com/danisampedro/locationapp/internal/itinerary"
	"github.com/danisampedro/locationapp/internal/project"
	"github.com/danisampedro/locationapp/internal/routing"
	"github.com/danisampedro/locationapp/internal/telemetry"
)

// Validation constants.
const (
	MaxTitleLength = 200
	MaxItems       = 200
)

// ErrRoutingUnavailable is returned when travel times are requested but no
// routing provider is configured.
var ErrRoutingUnavailable = errors.New("routing not configured")

// Suggestion reasons for legs without an estimate.
const (
	ReasonMeetingNotGeocoded  = "meeting point not geocoded"
	ReasonLocationNotGeocoded = "location not geocoded"
	ReasonRoutingFailed       = "routing failed"
)

// ProjectStore loads projects with their locations.
type ProjectStore interface {
	Get(ctx context.Context, id string) (*project.Project, error)
}

// TravelEstimator estimates driving time between two points.
type TravelEstimator interface {
	TravelTime(ctx context.Context, from, to routing.Coordinate) (*routing.Estimate, error)
	ProviderName() string
}

// ServiceConfig holds configuration for the recce service.
type ServiceConfig struct {
	Repo     Repository
	Projects ProjectStore

	// Routing is optional. Without it travel-time suggestions fail with
	// ErrRoutingUnavailable.
	Routing TravelEstimator

	Logger zerolog.Logger
}

// Service provides recce operations.
type Service struct {
	repo     Repository
	projects ProjectStore
	routing  TravelEstimator
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewService creates a new recce service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:     cfg.Repo,
		projects: cfg.Projects,
		routing:  cfg.Routing,
		logger:   cfg.Logger,
		tracer:   telemetry.Tracer("locationapp/recce"),
	}
}

// List retrieves a page of a project's recces.
func (s *Service) List(ctx context.Context, projectID string, limit int, cursor string) (*models.PagedRecces, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}

	result, err := s.repo.ListByProject(ctx, projectID, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}
	for _, skipped := range result.Skipped {
		s.logger.Warn().Err(skipped.Err).
			Str("recce_id", skipped.ID).
			Msg("skipping undecodable recce")
	}

	items := make([]models.Recce, 0, len(result.Items))
	for _, d := range result.Items {
		items = append(items, toAPIRecce(d))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedRecces{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a recce.
func (s *Service) Get(ctx context.Context, id string) (*models.Recce, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := toAPIRecce(d)
	return &result, nil
}

// Create creates a recce under an existing project.
func (s *Service) Create(ctx context.Context, projectID string, input *models.RecceCreateRequest) (*models.Recce, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}

	items := fromAPIItems(input.Items)
	if fieldErrors := validateRecce(input.Title, input.Date, items); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	d := &Document{
		ID:           "rec_" + uuid.New().String()[:22],
		ProjectID:    projectID,
		Title:        strings.TrimSpace(input.Title),
		Date:         strings.TrimSpace(input.Date),
		MeetingPoint: strings.TrimSpace(input.MeetingPoint),
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.Normalize()

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("recce_id", d.ID).
		Str("project_id", projectID).
		Int("items", len(d.Items)).
		Msg("recce created")

	result := toAPIRecce(d)
	return &result, nil
}

// Update applies a partial update. Saving always writes the current layout,
// so legacy documents are upgraded on their first edit.
func (s *Service) Update(ctx context.Context, id string, input *models.RecceUpdateRequest) (*models.Recce, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		d.Title = strings.TrimSpace(*input.Title)
	}
	if input.Date != nil {
		d.Date = strings.TrimSpace(*input.Date)
	}
	if input.MeetingPoint != nil {
		d.MeetingPoint = strings.TrimSpace(*input.MeetingPoint)
	}
	if input.Items != nil {
		d.Items = fromAPIItems(*input.Items)
	}

	if fieldErrors := validateRecce(d.Title, d.Date, d.Items); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	d.Normalize()
	d.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	result := toAPIRecce(d)
	return &result, nil
}

// Delete deletes a recce.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Reorder moves one item and persists the renumbered document.
func (s *Service) Reorder(ctx context.Context, id string, input *models.ReorderRequest) (*models.Recce, error) {
	if strings.TrimSpace(input.ItemID) == "" {
		return nil, &ValidationError{Errors: []models.FieldError{{Field: "itemId", Message: "is required"}}}
	}

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.Reorder(input.ItemID, input.Index); err != nil {
		return nil, err
	}

	d.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	result := toAPIRecce(d)
	return &result, nil
}

// Itinerary computes the schedule of a recce against its project's
// locations.
func (s *Service) Itinerary(ctx context.Context, id string) (*models.Itinerary, error) {
	ctx, span := s.tracer.Start(ctx, "recce.Itinerary", trace.WithAttributes(
		attribute.String("recce.id", id),
	))
	defer span.End()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p, err := s.projects.Get(ctx, d.ProjectID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	meetingPoint := MeetingPoint(d, p)
	rows := itinerary.Compute(d.Legs(), project.DirectoryOf(p), meetingPoint)
	span.SetAttributes(attribute.Int("itinerary.rows", len(rows)))

	return &models.Itinerary{
		RecceID:      d.ID,
		MeetingPoint: meetingPoint,
		Rows:         rows,
	}, nil
}

// SuggestTravelTimes estimates the travel time of every included leg from
// the previous stop. Estimates are returned, never written to the document.
func (s *Service) SuggestTravelTimes(ctx context.Context, id string) (*models.TravelTimeSuggestions, error) {
	if s.routing == nil {
		return nil, ErrRoutingUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "recce.SuggestTravelTimes", trace.WithAttributes(
		attribute.String("recce.id", id),
	))
	defer span.End()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.Get(ctx, d.ProjectID)
	if err != nil {
		return nil, err
	}

	var from *routing.Coordinate
	if p.HasMeetingCoords() {
		from = &routing.Coordinate{Lat: *p.MeetingLat, Lon: *p.MeetingLon}
	}
	fromReason := ReasonMeetingNotGeocoded

	legs := itinerary.Included(d.Legs())
	suggestions := make([]models.TravelTimeSuggestion, 0, len(legs))
	for _, leg := range legs {
		sug := models.TravelTimeSuggestion{ItemID: leg.ID, LocationID: leg.LocationID}

		var to *routing.Coordinate
		if l, ok := p.FindLocation(leg.LocationID); ok && l.HasCoords() {
			to = &routing.Coordinate{Lat: *l.Lat, Lon: *l.Lon}
		}

		switch {
		case from == nil:
			sug.Reason = fromReason
		case to == nil:
			sug.Reason = ReasonLocationNotGeocoded
		default:
			est, err := s.routing.TravelTime(ctx, *from, *to)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("recce_id", d.ID).
					Str("item_id", leg.ID).
					Msg("travel time estimate failed")
				sug.Reason = ReasonRoutingFailed
			} else {
				minutes, meters := est.Minutes, est.DistanceMeters
				sug.Minutes = &minutes
				sug.DistanceMeters = &meters
			}
		}
		suggestions = append(suggestions, sug)

		from = to
		fromReason = ReasonLocationNotGeocoded
	}

	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))

	return &models.TravelTimeSuggestions{
		RecceID:     d.ID,
		Provider:    s.routing.ProviderName(),
		Suggestions: suggestions,
	}, nil
}

// MeetingPoint returns the recce's own meeting point, falling back to the
// project's.
func MeetingPoint(d *Document, p *project.Project) string {
	if d.MeetingPoint != "" {
		return d.MeetingPoint
	}
	if p != nil {
		return p.MeetingPoint
	}
	return ""
}

func validateRecce(title, date string, items []Item) []models.FieldError {
	var errs []models.FieldError

	title = strings.TrimSpace(title)
	if title == "" {
		errs = append(errs, models.FieldError{Field: "title", Message: "is required"})
	} else if len(title) > MaxTitleLength {
		errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 200 characters"})
	}

	if date = strings.TrimSpace(date); date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			errs = append(errs, models.FieldError{Field: "date", Message: "must be a YYYY-MM-DD date"})
		}
	}

	if len(items) > MaxItems {
		errs = append(errs, models.FieldError{Field: "items", Message: "must contain at most 200 items"})
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("items[%d]", i),
				Message: strings.TrimPrefix(err.Error(), ErrInvalidItem.Error()+": "),
			})
		}
	}

	return errs
}

func fromAPIItems(in []models.RecceItem) []Item {
	items := make([]Item, 0, len(in))
	for _, it := range in {
		item := Item{ID: it.ID, Kind: ItemKind(it.Kind), Order: it.Order}
		if it.Leg != nil {
			leg := *it.Leg
			item.Leg = &leg
		}
		if it.Free != nil {
			item.Free = &FreeEntry{Title: it.Free.Title, Text: it.Free.Text}
		}
		items = append(items, item)
	}
	return items
}

func toAPIRecce(d *Document) models.Recce {
	sorted := d.Sorted()
	items := make([]models.RecceItem, 0, len(sorted))
	for _, it := range sorted {
		item := models.RecceItem{ID: it.ID, Kind: models.RecceItemKind(it.Kind), Order: it.Order}
		if it.Leg != nil {
			leg := *it.Leg
			item.Leg = &leg
		}
		if it.Free != nil {
			item.Free = &models.FreeEntry{Title: it.Free.Title, Text: it.Free.Text}
		}
		items = append(items, item)
	}

	return models.Recce{
		ID:           d.ID,
		ProjectID:    d.ProjectID,
		Title:        d.Title,
		Date:         d.Date,
		MeetingPoint: d.MeetingPoint,
		Items:        items,
		CreatedAt:    models.Timestamp(d.CreatedAt),
		UpdatedAt:    models.Timestamp(d.UpdatedAt),
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
