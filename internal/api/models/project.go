package models

// Project is a film or TV production.
type Project struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Company         string     `json:"company,omitempty"`
	LocationManager string     `json:"locationManager,omitempty"`
	MeetingPoint    string     `json:"meetingPoint,omitempty"`
	MeetingCoords   *Point     `json:"meetingCoords,omitempty"`
	Locations       []Location `json:"locations"`
	CreatedAt       Timestamp  `json:"createdAt"`
	UpdatedAt       Timestamp  `json:"updatedAt"`
}

// Location is a candidate filming site within a project.
type Location struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"nombre"`
	Address   string    `json:"address,omitempty"`
	Coords    *Point    `json:"coords,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
}

// ProjectCreateRequest is the body of POST /projects.
type ProjectCreateRequest struct {
	Name            string `json:"name"`
	Company         string `json:"company,omitempty"`
	LocationManager string `json:"locationManager,omitempty"`
	MeetingPoint    string `json:"meetingPoint,omitempty"`
	MeetingCoords   *Point `json:"meetingCoords,omitempty"`
}

// LocationCreateRequest is the body of POST /projects/{projectId}/locations.
type LocationCreateRequest struct {
	Name    string `json:"nombre"`
	Address string `json:"address,omitempty"`
	Coords  *Point `json:"coords,omitempty"`
}

// PagedProjects is a page of projects.
type PagedProjects struct {
	Items []Project         `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
