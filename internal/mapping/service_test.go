package mapping_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/mapping"
	"github.com/danisampedro/locationapp/internal/project"
	"github.com/danisampedro/locationapp/internal/spatial"
)

type fixture struct {
	svc  *mapping.Service
	repo *mapping.InMemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	projects := project.NewInMemoryRepository()
	now := time.Now()
	require.NoError(t, projects.Create(ctx, &project.Project{ID: "prj_1", Name: "El Faro", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, projects.AddLocation(ctx, &project.Location{ID: "loc_1", ProjectID: "prj_1", Name: "Nave 3"}))

	repo := mapping.NewInMemoryRepository()
	return &fixture{
		svc: mapping.NewService(mapping.ServiceConfig{
			Repo:     repo,
			Projects: projects,
			Logger:   zerolog.Nop(),
		}),
		repo: repo,
	}
}

func createMap(t *testing.T, f *fixture, objects ...spatial.Object) *models.LocationMap {
	t.Helper()
	m, err := f.svc.Create(context.Background(), "prj_1", &models.MapCreateRequest{
		LocationID:  "loc_1",
		Name:        "Nave 3 planta",
		ImageWidth:  1000,
		ImageHeight: 500,
		Objects:     objects,
	})
	require.NoError(t, err)
	return m
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	m := createMap(t, f,
		spatial.Object{Type: spatial.ObjectRectangle, Width: 4, Height: 2, Category: "Vehículos"},
		spatial.Object{ID: "obj_fixed", Type: spatial.ObjectCircle, Width: 3},
	)

	assert.True(t, strings.HasPrefix(m.ID, "map_"), "got %q", m.ID)
	assert.False(t, m.Calibrated)
	assert.Zero(t, m.Scale)
	require.Len(t, m.Objects, 2)
	assert.True(t, strings.HasPrefix(m.Objects[0].ID, "obj_"))
	assert.Equal(t, "obj_fixed", m.Objects[1].ID)
	assert.Equal(t, spatial.WorkAreaNone, m.WorkArea.Kind)
}

func TestService_Create_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "prj_missing", &models.MapCreateRequest{Name: "X", ImageWidth: 1, ImageHeight: 1})
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	tests := []struct {
		name      string
		input     *models.MapCreateRequest
		wantField string
	}{
		{"no name", &models.MapCreateRequest{ImageWidth: 1, ImageHeight: 1}, "name"},
		{"no width", &models.MapCreateRequest{Name: "X", ImageHeight: 1}, "imageWidth"},
		{"negative height", &models.MapCreateRequest{Name: "X", ImageWidth: 1, ImageHeight: -2}, "imageHeight"},
		{"foreign location", &models.MapCreateRequest{Name: "X", ImageWidth: 1, ImageHeight: 1, LocationID: "loc_other"}, "locationId"},
		{"bad object type", &models.MapCreateRequest{
			Name: "X", ImageWidth: 1, ImageHeight: 1,
			Objects: []spatial.Object{{Type: "triangle", Width: 1, Height: 1}},
		}, "objects[0]"},
		{"flat rectangle", &models.MapCreateRequest{
			Name: "X", ImageWidth: 1, ImageHeight: 1,
			Objects: []spatial.Object{{Type: spatial.ObjectRectangle, Width: 1}},
		}, "objects[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, "prj_1", tt.input)

			var verr *mapping.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			fields := make([]string, 0, len(verr.FieldErrors()))
			for _, fe := range verr.FieldErrors() {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestService_Metrics_RequiresCalibration(t *testing.T) {
	f := newFixture(t)
	m := createMap(t, f)

	_, err := f.svc.Metrics(context.Background(), m.ID)
	assert.ErrorIs(t, err, mapping.ErrUncalibrated)
}

func TestService_CalibrateAndMeasure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := createMap(t, f,
		spatial.Object{Type: spatial.ObjectRectangle, X: 10, Y: 10, Width: 4, Height: 2, Category: "Vehículos"},
		spatial.Object{Type: spatial.ObjectCircle, X: 900, Y: 400, Width: 2},
	)

	// 100 px = 10 m, so 0.1 m/px.
	calibrated, err := f.svc.Calibrate(ctx, m.ID, &models.CalibrationRequest{
		A:              spatial.Point{X: 0, Y: 0},
		B:              spatial.Point{X: 100, Y: 0},
		DistanceMeters: 10,
	})
	require.NoError(t, err)
	assert.True(t, calibrated.Calibrated)
	assert.InDelta(t, 0.1, calibrated.Scale, 1e-12)

	metrics, err := f.svc.Metrics(ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, m.ID, metrics.MapID)
	assert.InDelta(t, 5000, metrics.TotalAreaM2, 1e-6)
	assert.InDelta(t, 12, metrics.OccupiedAreaM2, 1e-9)
	assert.InDelta(t, 4988, metrics.FreeAreaM2, 1e-6)
	assert.Equal(t, 2, metrics.TotalObjects)
	assert.Equal(t, 2, metrics.InsideObjects)
	assert.Equal(t, map[string]int{"Vehículos": 1, spatial.DefaultCategory: 1}, metrics.ObjectsByCategory)

	// Restrict to the left half: the circle at x=900 falls outside.
	workArea := spatial.NewWorkArea(spatial.Rect(0, 0, 500, 500))
	_, err = f.svc.Update(ctx, m.ID, &models.MapUpdateRequest{WorkArea: &workArea})
	require.NoError(t, err)

	metrics, err = f.svc.Metrics(ctx, m.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2500, metrics.TotalAreaM2, 1e-6)
	assert.InDelta(t, 8, metrics.OccupiedAreaM2, 1e-9)
	assert.Equal(t, 2, metrics.TotalObjects)
	assert.Equal(t, 1, metrics.InsideObjects)
}

func TestService_Calibrate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := createMap(t, f)

	tests := []struct {
		name      string
		input     *models.CalibrationRequest
		wantField string
	}{
		{"same point", &models.CalibrationRequest{A: spatial.Point{X: 5, Y: 5}, B: spatial.Point{X: 5, Y: 5}, DistanceMeters: 3}, "b"},
		{"zero distance", &models.CalibrationRequest{B: spatial.Point{X: 5}, DistanceMeters: 0}, "distanceMeters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Calibrate(ctx, m.ID, tt.input)

			var verr *mapping.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Errors[0].Field)
		})
	}

	_, err := f.svc.Calibrate(ctx, "map_missing", &models.CalibrationRequest{B: spatial.Point{X: 1}, DistanceMeters: 1})
	assert.ErrorIs(t, err, mapping.ErrMapNotFound)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := createMap(t, f)

	name := "Plano definitivo"
	objects := []spatial.Object{{Type: spatial.ObjectRectangle, Width: 1, Height: 1}}
	updated, err := f.svc.Update(ctx, m.ID, &models.MapUpdateRequest{Name: &name, Objects: &objects})
	require.NoError(t, err)
	assert.Equal(t, "Plano definitivo", updated.Name)
	require.Len(t, updated.Objects, 1)
	assert.NotEmpty(t, updated.Objects[0].ID)

	empty := " "
	_, err = f.svc.Update(ctx, m.ID, &models.MapUpdateRequest{Name: &empty})
	var verr *mapping.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.svc.Update(ctx, "map_missing", &models.MapUpdateRequest{Name: &name})
	assert.ErrorIs(t, err, mapping.ErrMapNotFound)
}

func TestService_Update_RewritesLegacyWorkArea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.PutRaw(&mapping.Map{ID: "map_legacy", ProjectID: "prj_1", Name: "Old", ImageWidth: 100, ImageHeight: 100, Scale: 1},
		[]byte(`{"x":10,"y":10,"width":20,"height":30}`))

	before, err := f.repo.Get(ctx, "map_legacy")
	require.NoError(t, err)
	require.True(t, before.Legacy())
	assert.Equal(t, spatial.Rect(10, 10, 20, 30), before.WorkArea.Polygon)

	metrics, err := f.svc.Metrics(ctx, "map_legacy")
	require.NoError(t, err)
	assert.InDelta(t, 600, metrics.TotalAreaM2, 1e-9)

	name := "Renamed"
	_, err = f.svc.Update(ctx, "map_legacy", &models.MapUpdateRequest{Name: &name})
	require.NoError(t, err)

	after, err := f.repo.Get(ctx, "map_legacy")
	require.NoError(t, err)
	assert.False(t, after.Legacy())
	assert.Equal(t, spatial.WorkAreaPolygon, after.WorkArea.Kind)
	assert.Equal(t, before.WorkArea.Polygon, after.WorkArea.Polygon)
}

func TestService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := createMap(t, f)
	createMap(t, f)

	page, err := f.svc.List(ctx, "prj_1", 1, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	require.NotNil(t, page.Meta.NextCursor)

	require.NoError(t, f.svc.Delete(ctx, first.ID))
	all, err := f.svc.List(ctx, "prj_1", 10, "")
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)
	assert.Nil(t, all.Meta.NextCursor)

	assert.ErrorIs(t, f.svc.Delete(ctx, first.ID), mapping.ErrMapNotFound)

	_, err = f.svc.List(ctx, "prj_missing", 10, "")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}
