package models

import "github.com/danisampedro/locationapp/internal/spatial"

// LocationMap is an annotated plan of a location.
type LocationMap struct {
	ID          string           `json:"id"`
	ProjectID   string           `json:"projectId"`
	LocationID  string           `json:"locationId,omitempty"`
	Name        string           `json:"name"`
	ImageURL    string           `json:"imageUrl,omitempty"`
	ImageWidth  float64          `json:"imageWidth"`
	ImageHeight float64          `json:"imageHeight"`
	Scale       float64          `json:"scale"`
	Calibrated  bool             `json:"calibrated"`
	Objects     []spatial.Object `json:"objects"`
	WorkArea    spatial.WorkArea `json:"workArea"`
	CreatedAt   Timestamp        `json:"createdAt"`
	UpdatedAt   Timestamp        `json:"updatedAt"`
}

// MapCreateRequest is the body of POST /projects/{projectId}/maps.
type MapCreateRequest struct {
	LocationID  string           `json:"locationId,omitempty"`
	Name        string           `json:"name"`
	ImageURL    string           `json:"imageUrl,omitempty"`
	ImageWidth  float64          `json:"imageWidth"`
	ImageHeight float64          `json:"imageHeight"`
	Objects     []spatial.Object `json:"objects,omitempty"`
	WorkArea    spatial.WorkArea `json:"workArea"`
}

// MapUpdateRequest is the body of PUT /maps/{mapId}. Nil fields are left
// unchanged.
type MapUpdateRequest struct {
	Name     *string           `json:"name,omitempty"`
	Objects  *[]spatial.Object `json:"objects,omitempty"`
	WorkArea *spatial.WorkArea `json:"workArea,omitempty"`
}

// CalibrationRequest sets a map's scale from two reference points.
type CalibrationRequest struct {
	A              spatial.Point `json:"a"`
	B              spatial.Point `json:"b"`
	DistanceMeters float64       `json:"distanceMeters"`
}

// PagedMaps is a page of maps.
type PagedMaps struct {
	Items []LocationMap     `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// MapMetrics is the response of GET /maps/{mapId}/metrics.
type MapMetrics struct {
	MapID string `json:"mapId"`
	spatial.Metrics
}
