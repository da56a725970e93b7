package recce_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/itinerary"
	"github.com/danisampedro/locationapp/internal/project"
	"github.com/danisampedro/locationapp/internal/recce"
	"github.com/danisampedro/locationapp/internal/routing"
)

type fakeEstimator struct {
	minutes map[string]int
	calls   []routing.Coordinate
}

func (f *fakeEstimator) TravelTime(_ context.Context, _, to routing.Coordinate) (*routing.Estimate, error) {
	f.calls = append(f.calls, to)
	if m, ok := f.minutes[coordKey(to)]; ok {
		return &routing.Estimate{Minutes: m, DistanceMeters: m * 1000, Provider: "fake"}, nil
	}
	return nil, &routing.Error{Provider: "fake", Message: "no route", Err: routing.ErrNoRouteFound}
}

func (f *fakeEstimator) ProviderName() string {
	return "fake"
}

func coordKey(c routing.Coordinate) string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

func ptr(f float64) *float64 {
	return &f
}

type fixture struct {
	svc       *recce.Service
	repo      *recce.InMemoryRepository
	estimator *fakeEstimator
	projectID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	projects := project.NewInMemoryRepository()
	now := time.Now()
	require.NoError(t, projects.Create(ctx, &project.Project{
		ID:           "prj_1",
		Name:         "El Faro",
		MeetingPoint: "Base Camp",
		MeetingLat:   ptr(40.0),
		MeetingLon:   ptr(-3.0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
	for _, l := range []project.Location{
		{ID: "loc_1", ProjectID: "prj_1", Name: "Faro de Cabo Mayor", Lat: ptr(43.0), Lon: ptr(-3.5)},
		{ID: "loc_2", ProjectID: "prj_1", Name: "Playa del Sardinero"},
		{ID: "loc_3", ProjectID: "prj_1", Name: "Palacio de la Magdalena", Lat: ptr(43.1), Lon: ptr(-3.6)},
	} {
		require.NoError(t, projects.AddLocation(ctx, &l))
	}

	repo := recce.NewInMemoryRepository()
	estimator := &fakeEstimator{minutes: map[string]int{
		coordKey(routing.Coordinate{Lat: 43.0, Lon: -3.5}): 42,
		coordKey(routing.Coordinate{Lat: 43.1, Lon: -3.6}): 7,
	}}

	return &fixture{
		svc: recce.NewService(recce.ServiceConfig{
			Repo:     repo,
			Projects: projects,
			Routing:  estimator,
			Logger:   zerolog.Nop(),
		}),
		repo:      repo,
		estimator: estimator,
		projectID: "prj_1",
	}
}

func legItem(locationID, depart string, travel, onLocation int) models.RecceItem {
	return models.RecceItem{
		Kind: models.RecceItemLeg,
		Leg: &itinerary.Leg{
			LocationID:            locationID,
			Include:               true,
			DepartTime:            depart,
			TravelTimeMinutes:     itinerary.Minutes(travel),
			TimeOnLocationMinutes: itinerary.Minutes(onLocation),
		},
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	items := []models.RecceItem{
		legItem("loc_1", "08:00", 30, 60),
		{Kind: models.RecceItemFree, Order: 1, Free: &models.FreeEntry{Title: "Parking", Text: "Lot B"}},
	}
	items[0].Order = 0

	result, err := f.svc.Create(context.Background(), f.projectID, &models.RecceCreateRequest{
		Title: "  Scout day 1 ",
		Date:  "2026-03-14",
		Items: items,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.ID, "rec_"), "got %q", result.ID)
	assert.Equal(t, "Scout day 1", result.Title)
	require.Len(t, result.Items, 2)
	for _, it := range result.Items {
		assert.NotEmpty(t, it.ID)
	}
	assert.Equal(t, result.Items[0].ID, result.Items[0].Leg.ID)
}

func TestService_Create_UnknownProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), "prj_missing", &models.RecceCreateRequest{Title: "X"})
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestService_Create_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		input     *models.RecceCreateRequest
		wantField string
	}{
		{"empty title", &models.RecceCreateRequest{Title: " "}, "title"},
		{"title too long", &models.RecceCreateRequest{Title: strings.Repeat("t", 201)}, "title"},
		{"bad date", &models.RecceCreateRequest{Title: "X", Date: "14/03/2026"}, "date"},
		{"item without payload", &models.RecceCreateRequest{
			Title: "X",
			Items: []models.RecceItem{{Kind: models.RecceItemLeg}},
		}, "items[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.projectID, tt.input)

			var verr *recce.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			fields := make([]string, 0, len(verr.FieldErrors()))
			for _, fe := range verr.FieldErrors() {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{Title: "Recce"})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, f.projectID, 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotNil(t, page.Meta.NextCursor)

	rest, err := f.svc.List(ctx, f.projectID, 2, *page.Meta.NextCursor)
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.Nil(t, rest.Meta.NextCursor)

	_, err = f.svc.List(ctx, "prj_missing", 10, "")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestService_List_SkipsUndecodableRecce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.PutRaw(&recce.Document{ID: "rec_a", ProjectID: f.projectID, Title: "Broken"}, []byte(`{"items":{}}`))
	f.repo.PutRaw(&recce.Document{ID: "rec_b", ProjectID: f.projectID, Title: "Old"},
		[]byte(`{"legs":[{"locationId":"loc_1","include":true,"order":0}]}`))

	page, err := f.svc.List(ctx, f.projectID, 1, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	require.NotNil(t, page.Meta.NextCursor)

	rest, err := f.svc.List(ctx, f.projectID, 10, *page.Meta.NextCursor)
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "rec_b", rest.Items[0].ID)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{Title: "Recce"})
	require.NoError(t, err)

	title := "Recce norte"
	meeting := "Gasolinera km 12"
	items := []models.RecceItem{legItem("loc_1", "09:00", 10, 20)}
	updated, err := f.svc.Update(ctx, created.ID, &models.RecceUpdateRequest{
		Title:        &title,
		MeetingPoint: &meeting,
		Items:        &items,
	})
	require.NoError(t, err)

	assert.Equal(t, "Recce norte", updated.Title)
	assert.Equal(t, "Gasolinera km 12", updated.MeetingPoint)
	assert.Len(t, updated.Items, 1)

	empty := ""
	_, err = f.svc.Update(ctx, created.ID, &models.RecceUpdateRequest{Title: &empty})
	var verr *recce.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.svc.Update(ctx, "rec_missing", &models.RecceUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, recce.ErrRecceNotFound)
}

func TestService_Update_UpgradesLegacyDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.PutRaw(&recce.Document{ID: "rec_legacy", ProjectID: f.projectID, Title: "Old"},
		[]byte(`{"legs":[{"id":"l1","locationId":"loc_1","include":true,"order":0}],"freeEntries":[{"id":"f1","text":"note","order":1}]}`))

	before, err := f.repo.Get(ctx, "rec_legacy")
	require.NoError(t, err)
	require.True(t, before.Legacy)

	title := "Renamed"
	_, err = f.svc.Update(ctx, "rec_legacy", &models.RecceUpdateRequest{Title: &title})
	require.NoError(t, err)

	after, err := f.repo.Get(ctx, "rec_legacy")
	require.NoError(t, err)
	assert.False(t, after.Legacy)
	assert.Equal(t, []string{"l1", "f1"}, itemIDs(after.Items))
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{Title: "Recce"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, recce.ErrRecceNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), recce.ErrRecceNotFound)
}

func TestService_Reorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items := []models.RecceItem{
		legItem("loc_1", "08:00", 30, 60),
		legItem("loc_3", "", 15, 30),
	}
	items[1].Order = 1
	created, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{Title: "Recce", Items: items})
	require.NoError(t, err)

	second := created.Items[1].ID
	reordered, err := f.svc.Reorder(ctx, created.ID, &models.ReorderRequest{ItemID: second, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, second, reordered.Items[0].ID)
	assert.Equal(t, float64(0), reordered.Items[0].Order)

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.Items[0].ID)

	_, err = f.svc.Reorder(ctx, created.ID, &models.ReorderRequest{ItemID: "itm_missing"})
	assert.ErrorIs(t, err, recce.ErrItemNotFound)

	_, err = f.svc.Reorder(ctx, created.ID, &models.ReorderRequest{})
	var verr *recce.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestService_Itinerary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items := []models.RecceItem{
		legItem("loc_1", "08:00", 30, 60),
		{Kind: models.RecceItemFree, Order: 1, Free: &models.FreeEntry{Text: "Lunch"}},
		legItem("loc_9", "", 15, 45),
	}
	items[2].Order = 2
	created, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{Title: "Recce", Items: items})
	require.NoError(t, err)

	result, err := f.svc.Itinerary(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Base Camp", result.MeetingPoint)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, itinerary.Row{
		From: "Base Camp", To: "Faro de Cabo Mayor",
		DepartTime: "08:00", TravelTime: "30 min", ArrivalTime: "08:30", TimeOnLocation: "60 min",
		LocationID: "loc_1",
	}, result.Rows[0])
	assert.Equal(t, "Faro de Cabo Mayor", result.Rows[1].From)
	assert.Equal(t, "Location loc_9", result.Rows[1].To)
	assert.Equal(t, "09:30", result.Rows[1].DepartTime)
	assert.Equal(t, "09:45", result.Rows[1].ArrivalTime)
}

func TestService_Itinerary_RecceMeetingPointOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{
		Title:        "Recce",
		MeetingPoint: "Hotel Real",
		Items:        []models.RecceItem{legItem("loc_1", "", 30, 60)},
	})
	require.NoError(t, err)

	result, err := f.svc.Itinerary(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Real", result.MeetingPoint)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Hotel Real", result.Rows[0].From)
	assert.Empty(t, result.Rows[0].DepartTime)
}

func TestService_SuggestTravelTimes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items := []models.RecceItem{
		legItem("loc_1", "08:00", 0, 60),
		legItem("loc_2", "", 0, 30),
		legItem("loc_3", "", 0, 30),
		legItem("loc_1", "", 0, 30),
	}
	for i := range items {
		items[i].Order = float64(i)
	}
	items[3].Leg.Include = false

	created, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{Title: "Recce", Items: items})
	require.NoError(t, err)

	result, err := f.svc.SuggestTravelTimes(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "fake", result.Provider)
	require.Len(t, result.Suggestions, 3)

	first := result.Suggestions[0]
	require.NotNil(t, first.Minutes)
	assert.Equal(t, 42, *first.Minutes)
	assert.Equal(t, 42000, *first.DistanceMeters)

	assert.Nil(t, result.Suggestions[1].Minutes)
	assert.Equal(t, recce.ReasonLocationNotGeocoded, result.Suggestions[1].Reason)

	// The stop before loc_3 has no coordinates.
	assert.Nil(t, result.Suggestions[2].Minutes)
	assert.Equal(t, recce.ReasonLocationNotGeocoded, result.Suggestions[2].Reason)

	assert.Len(t, f.estimator.calls, 1)

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, itinerary.Duration("0"), stored.Items[0].Leg.TravelTimeMinutes, "suggestions must not be applied")
}

func TestService_SuggestTravelTimes_RoutingFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.estimator.minutes = nil

	created, err := f.svc.Create(ctx, f.projectID, &models.RecceCreateRequest{
		Title: "Recce",
		Items: []models.RecceItem{legItem("loc_1", "", 0, 0)},
	})
	require.NoError(t, err)

	result, err := f.svc.SuggestTravelTimes(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, recce.ReasonRoutingFailed, result.Suggestions[0].Reason)
}

func TestService_SuggestTravelTimes_NoRouting(t *testing.T) {
	svc := recce.NewService(recce.ServiceConfig{
		Repo:     recce.NewInMemoryRepository(),
		Projects: project.NewInMemoryRepository(),
		Logger:   zerolog.Nop(),
	})

	_, err := svc.SuggestTravelTimes(context.Background(), "rec_1")
	assert.ErrorIs(t, err, recce.ErrRoutingUnavailable)
}
