// Package itinerary derives the chronological schedule of a recce from the
// travel legs entered by the user.
//
// The calculator is pure: it never fails on malformed input. Durations that
// cannot be parsed count as zero minutes and an unparsable anchor time leaves
// every derived time blank.
package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Leg is one travel+stay segment of a recce.
type Leg struct {
	ID string `json:"id,omitempty"`

	// LocationID references a project location. Empty means unassigned.
	// It decodes from a JSON string, a JSON number or null.
	LocationID string `json:"locationId"`

	// Include marks the leg as part of the computed itinerary.
	Include bool `json:"include"`

	// DepartTime is an HH:MM wall-clock time. Only the first included leg's
	// value is read; later departures are derived.
	DepartTime string `json:"departTime,omitempty"`

	TravelTimeMinutes     Duration `json:"travelTimeMinutes"`
	TimeOnLocationMinutes Duration `json:"timeOnLocationMinutes"`

	// Order is shared with free-text entries of the same document.
	Order float64 `json:"order"`
}

// UnmarshalJSON implements json.Unmarshaler. Numeric location IDs keep their
// literal text; any other non-string value leaves the leg unassigned.
func (l *Leg) UnmarshalJSON(data []byte) error {
	type plain Leg
	aux := struct {
		*plain
		LocationID json.RawMessage `json:"locationId"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.LocationID = looseID(aux.LocationID)
	return nil
}

func looseID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// Row is one line of the rendered itinerary table.
type Row struct {
	From           string `json:"from"`
	To             string `json:"to"`
	DepartTime     string `json:"departTime"`
	TravelTime     string `json:"travelTime"`
	ArrivalTime    string `json:"arrivalTime"`
	TimeOnLocation string `json:"timeOnLocation"`
	LocationID     string `json:"locationId"`
}

// Directory resolves location IDs to display names.
type Directory interface {
	LocationName(id string) (string, bool)
}

// Names is a map-backed Directory.
type Names map[string]string

// LocationName implements Directory.
func (n Names) LocationName(id string) (string, bool) {
	name, ok := n[id]
	return name, ok
}

// Included returns the legs that take part in the itinerary, in ascending
// order. The input slice is not modified.
func Included(legs []Leg) []Leg {
	out := make([]Leg, 0, len(legs))
	for _, leg := range legs {
		if leg.Include && leg.LocationID != "" {
			out = append(out, leg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Compute chains the included legs forward in time starting at the meeting
// point. The first included leg's DepartTime anchors the clock; when it is
// missing or malformed all departure and arrival times stay empty.
func Compute(legs []Leg, dir Directory, meetingPoint string) []Row {
	included := Included(legs)
	rows := make([]Row, 0, len(included))
	if len(included) == 0 {
		return rows
	}

	from := meetingPoint
	var depart *int
	if m, ok := ParseTimeToMinutes(included[0].DepartTime); ok {
		depart = &m
	}

	for _, leg := range included {
		to := locationLabel(dir, leg.LocationID)
		travel := DurationOrZero(leg.TravelTimeMinutes)
		onLocation := DurationOrZero(leg.TimeOnLocationMinutes)

		var arrival *int
		if depart != nil {
			a := *depart + travel
			arrival = &a
		}

		rows = append(rows, Row{
			From:           from,
			To:             to,
			DepartTime:     FormatOptionalMinutes(depart),
			TravelTime:     formatDuration(travel),
			ArrivalTime:    FormatOptionalMinutes(arrival),
			TimeOnLocation: formatDuration(onLocation),
			LocationID:     leg.LocationID,
		})

		from = to
		if arrival != nil {
			next := *arrival + onLocation
			depart = &next
		} else {
			depart = nil
		}
	}

	return rows
}

// MissingLocationLabel is the display name used for unresolved location IDs.
func MissingLocationLabel(id string) string {
	return fmt.Sprintf("Location %s", id)
}

func locationLabel(dir Directory, id string) string {
	if dir != nil {
		if name, ok := dir.LocationName(id); ok && name != "" {
			return name
		}
	}
	return MissingLocationLabel(id)
}

func formatDuration(minutes int) string {
	return strconv.Itoa(minutes) + " min"
}
