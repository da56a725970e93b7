package models

import "github.com/danisampedro/locationapp/internal/itinerary"

// RecceItemKind tags the payload of a recce item.
type RecceItemKind string

const (
	RecceItemLeg  RecceItemKind = "leg"
	RecceItemFree RecceItemKind = "free"
)

// Recce is a location-scouting trip document.
type Recce struct {
	ID           string      `json:"id"`
	ProjectID    string      `json:"projectId"`
	Title        string      `json:"title"`
	Date         string      `json:"date,omitempty"`
	MeetingPoint string      `json:"meetingPoint,omitempty"`
	Items        []RecceItem `json:"items"`
	CreatedAt    Timestamp   `json:"createdAt"`
	UpdatedAt    Timestamp   `json:"updatedAt"`
}

// RecceItem is one entry of a recce: a travel leg or a free-text note.
type RecceItem struct {
	ID    string         `json:"id,omitempty"`
	Kind  RecceItemKind  `json:"kind"`
	Order float64        `json:"order"`
	Leg   *itinerary.Leg `json:"leg,omitempty"`
	Free  *FreeEntry     `json:"free,omitempty"`
}

// FreeEntry is a free-text block interleaved with legs.
type FreeEntry struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// RecceCreateRequest is the body of POST /projects/{projectId}/recces.
type RecceCreateRequest struct {
	Title        string      `json:"title"`
	Date         string      `json:"date,omitempty"`
	MeetingPoint string      `json:"meetingPoint,omitempty"`
	Items        []RecceItem `json:"items,omitempty"`
}

// RecceUpdateRequest is the body of PUT /recces/{recceId}. Nil fields are
// left unchanged.
type RecceUpdateRequest struct {
	Title        *string      `json:"title,omitempty"`
	Date         *string      `json:"date,omitempty"`
	MeetingPoint *string      `json:"meetingPoint,omitempty"`
	Items        *[]RecceItem `json:"items,omitempty"`
}

// ReorderRequest moves one item to a new position.
type ReorderRequest struct {
	ItemID string `json:"itemId"`
	Index  int    `json:"index"`
}

// PagedRecces is a page of recces.
type PagedRecces struct {
	Items []Recce           `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// Itinerary is the computed schedule of a recce.
type Itinerary struct {
	RecceID      string          `json:"recceId"`
	MeetingPoint string          `json:"meetingPoint"`
	Rows         []itinerary.Row `json:"rows"`
}

// TravelTimeSuggestion is a routing estimate for one leg.
type TravelTimeSuggestion struct {
	ItemID         string `json:"itemId"`
	LocationID     string `json:"locationId"`
	Minutes        *int   `json:"minutes,omitempty"`
	DistanceMeters *int   `json:"distanceMeters,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// TravelTimeSuggestions is the response of the travel-time suggestion endpoint.
type TravelTimeSuggestions struct {
	RecceID     string                 `json:"recceId"`
	Provider    string                 `json:"provider"`
	Suggestions []TravelTimeSuggestion `json:"suggestions"`
}
