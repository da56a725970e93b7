// Package project manages the production catalog: projects and the candidate
// locations scouted for them.
package project

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrLocationNotFound = errors.New("location not found")
)

// Project is a film or TV production.
type Project struct {
	ID              string `gorm:"primaryKey;size:40"`
	Name            string `gorm:"not null"`
	Company         string
	LocationManager string

	// MeetingPoint is the crew gathering place every recce starts from
	// unless the recce overrides it.
	MeetingPoint string
	MeetingLat   *float64
	MeetingLon   *float64

	Locations []Location `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName implements gorm's tabler.
func (Project) TableName() string {
	return "projects"
}

// Location is a candidate filming site.
type Location struct {
	ID        string `gorm:"primaryKey;size:40"`
	ProjectID string `gorm:"index;size:40;not null"`
	Name      string `gorm:"not null"`
	Address   string
	Lat       *float64
	Lon       *float64

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName implements gorm's tabler.
func (Location) TableName() string {
	return "locations"
}

// HasCoords reports whether the location is geocoded.
func (l Location) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// HasMeetingCoords reports whether the project's meeting point is geocoded.
func (p Project) HasMeetingCoords() bool {
	return p.MeetingLat != nil && p.MeetingLon != nil
}

// FindLocation returns the project's location with the given ID.
func (p Project) FindLocation(id string) (Location, bool) {
	for _, l := range p.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}
