package itinerary_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danisampedro/locationapp/internal/itinerary"
)

var testLocations = itinerary.Names{
	"loc_a": "Palacio de Linares",
	"loc_b": "Estación de Atocha",
	"loc_c": "Casa de Campo",
}

func TestCompute_ChainsLegsForward(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_a", Include: true, DepartTime: "08:00", TravelTimeMinutes: "15", TimeOnLocationMinutes: "60", Order: 1},
		{LocationID: "loc_b", Include: true, TravelTimeMinutes: "20", TimeOnLocationMinutes: "30", Order: 2},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 2)

	assert.Equal(t, itinerary.Row{
		From:           "HQ",
		To:             "Palacio de Linares",
		DepartTime:     "08:00",
		TravelTime:     "15 min",
		ArrivalTime:    "08:15",
		TimeOnLocation: "60 min",
		LocationID:     "loc_a",
	}, rows[0])

	assert.Equal(t, "Palacio de Linares", rows[1].From)
	assert.Equal(t, "Estación de Atocha", rows[1].To)
	assert.Equal(t, "09:15", rows[1].DepartTime)
	assert.Equal(t, "09:35", rows[1].ArrivalTime)
	assert.Equal(t, "20 min", rows[1].TravelTime)
	assert.Equal(t, "30 min", rows[1].TimeOnLocation)
}

func TestCompute_OnlyFirstDepartTimeIsHonored(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_a", Include: true, DepartTime: "07:30", TravelTimeMinutes: "10", TimeOnLocationMinutes: "20", Order: 1},
		{LocationID: "loc_b", Include: true, DepartTime: "13:00", TravelTimeMinutes: "5", Order: 2},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 2)
	assert.Equal(t, "08:00", rows[1].DepartTime)
	assert.Equal(t, "08:05", rows[1].ArrivalTime)
}

func TestCompute_MissingAnchorLeavesTimesBlank(t *testing.T) {
	tests := []struct {
		name       string
		departTime string
	}{
		{name: "empty", departTime: ""},
		{name: "no colon", departTime: "0800"},
		{name: "non numeric", departTime: "ab:cd"},
		{name: "too many parts", departTime: "08:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legs := []itinerary.Leg{
				{LocationID: "loc_a", Include: true, DepartTime: tt.departTime, TravelTimeMinutes: "15", Order: 1},
				{LocationID: "loc_b", Include: true, DepartTime: "10:00", TravelTimeMinutes: "20", Order: 2},
				{LocationID: "loc_c", Include: true, TravelTimeMinutes: "5", Order: 3},
			}

			rows := itinerary.Compute(legs, testLocations, "HQ")
			require.Len(t, rows, 3)
			for _, row := range rows {
				assert.Empty(t, row.DepartTime)
				assert.Empty(t, row.ArrivalTime)
			}
			assert.Equal(t, "15 min", rows[0].TravelTime)
		})
	}
}

func TestCompute_SkipsExcludedAndUnassignedLegs(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_a", Include: true, DepartTime: "09:00", TravelTimeMinutes: "10", TimeOnLocationMinutes: "30", Order: 1},
		{LocationID: "loc_b", Include: false, TravelTimeMinutes: "999", TimeOnLocationMinutes: "999", Order: 2},
		{LocationID: "", Include: true, TravelTimeMinutes: "999", TimeOnLocationMinutes: "999", Order: 3},
		{LocationID: "loc_c", Include: true, TravelTimeMinutes: "20", TimeOnLocationMinutes: "15", Order: 4},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 2)
	assert.Equal(t, "Palacio de Linares", rows[1].From)
	assert.Equal(t, "Casa de Campo", rows[1].To)
	assert.Equal(t, "09:40", rows[1].DepartTime)
	assert.Equal(t, "10:00", rows[1].ArrivalTime)
}

func TestCompute_FirstQualifyingLegAnchors(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_a", Include: false, DepartTime: "06:00", Order: 1},
		{LocationID: "loc_b", Include: true, DepartTime: "11:00", TravelTimeMinutes: "30", Order: 2},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 1)
	assert.Equal(t, "HQ", rows[0].From)
	assert.Equal(t, "11:00", rows[0].DepartTime)
	assert.Equal(t, "11:30", rows[0].ArrivalTime)
}

func TestCompute_SortsByOrder(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_b", Include: true, TravelTimeMinutes: "10", Order: 5},
		{LocationID: "loc_a", Include: true, DepartTime: "08:00", TravelTimeMinutes: "10", Order: 1.5},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 2)
	assert.Equal(t, "loc_a", rows[0].LocationID)
	assert.Equal(t, "loc_b", rows[1].LocationID)
	assert.Equal(t, "08:10", rows[1].DepartTime)
}

func TestCompute_MalformedDurationsCountAsZero(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_a", Include: true, DepartTime: "08:00", TravelTimeMinutes: "abc", TimeOnLocationMinutes: "", Order: 1},
		{LocationID: "loc_b", Include: true, TravelTimeMinutes: "-5", Order: 2},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 2)
	assert.Equal(t, "0 min", rows[0].TravelTime)
	assert.Equal(t, "0 min", rows[0].TimeOnLocation)
	assert.Equal(t, "08:00", rows[0].ArrivalTime)
	assert.Equal(t, "08:00", rows[1].DepartTime)
	assert.Equal(t, "0 min", rows[1].TravelTime)
}

func TestCompute_UnknownLocationGetsPlaceholder(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_zz", Include: true, DepartTime: "08:00", Order: 1},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 1)
	assert.Equal(t, "Location loc_zz", rows[0].To)
	assert.Equal(t, "loc_zz", rows[0].LocationID)

	rows = itinerary.Compute(legs, nil, "HQ")
	require.Len(t, rows, 1)
	assert.Equal(t, "Location loc_zz", rows[0].To)
}

func TestCompute_NoQualifyingLegs(t *testing.T) {
	rows := itinerary.Compute(nil, testLocations, "HQ")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	rows = itinerary.Compute([]itinerary.Leg{{LocationID: "loc_a"}}, testLocations, "HQ")
	assert.Empty(t, rows)
}

func TestCompute_WrapsPastMidnight(t *testing.T) {
	legs := []itinerary.Leg{
		{LocationID: "loc_a", Include: true, DepartTime: "23:30", TravelTimeMinutes: "45", Order: 1},
	}

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 1)
	assert.Equal(t, "00:15", rows[0].ArrivalTime)
}

func TestLeg_DecodesLooseLocationIDs(t *testing.T) {
	raw := `[
		{"locationId":"loc_a","include":true},
		{"locationId":5,"include":true},
		{"locationId":null,"include":true},
		{"include":true},
		{"locationId":true,"include":true}
	]`

	var legs []itinerary.Leg
	require.NoError(t, json.Unmarshal([]byte(raw), &legs))

	got := make([]string, 0, len(legs))
	for _, l := range legs {
		got = append(got, l.LocationID)
		assert.True(t, l.Include)
	}
	assert.Equal(t, []string{"loc_a", "5", "", "", ""}, got)
}

func TestLeg_DecodesLooseDurations(t *testing.T) {
	raw := `[
		{"locationId":"loc_a","include":true,"departTime":"08:00","travelTimeMinutes":15,"timeOnLocationMinutes":"60","order":1},
		{"locationId":"loc_b","include":true,"travelTimeMinutes":null,"timeOnLocationMinutes":"","order":2}
	]`

	var legs []itinerary.Leg
	require.NoError(t, json.Unmarshal([]byte(raw), &legs))

	assert.Equal(t, itinerary.Duration("15"), legs[0].TravelTimeMinutes)
	assert.Equal(t, itinerary.Duration("60"), legs[0].TimeOnLocationMinutes)
	assert.Equal(t, itinerary.Duration(""), legs[1].TravelTimeMinutes)

	rows := itinerary.Compute(legs, testLocations, "HQ")
	require.Len(t, rows, 2)
	assert.Equal(t, "09:15", rows[1].DepartTime)
	assert.Equal(t, "09:15", rows[1].ArrivalTime)
}
