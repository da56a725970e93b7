// Package mapping stores annotated location plans and measures how much of
// their usable ground is taken by placed objects.
package mapping

import (
	"errors"
	"time"

	"github.com/danisampedro/locationapp/internal/spatial"
)

// Map errors.
var (
	ErrMapNotFound   = errors.New("map not found")
	ErrUncalibrated  = errors.New("map not calibrated")
	ErrInvalidObject = errors.New("invalid object")
)

// Map is a plan image of a location with placed objects and an optional
// work area boundary.
type Map struct {
	ID         string
	ProjectID  string
	LocationID string
	Name       string
	ImageURL   string

	// ImageWidth and ImageHeight are pixels.
	ImageWidth  float64
	ImageHeight float64

	// Scale is meters per pixel. Zero means uncalibrated.
	Scale float64

	Objects  []spatial.Object
	WorkArea spatial.WorkArea

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Calibrated reports whether the map has a usable scale.
func (m *Map) Calibrated() bool {
	return m.Scale > 0
}

// Legacy reports whether the stored work area used the old rectangle shape.
func (m *Map) Legacy() bool {
	return m.WorkArea.Legacy
}

// Metrics measures the map's objects against its work area.
func (m *Map) Metrics() (spatial.Metrics, error) {
	if !m.Calibrated() {
		return spatial.Metrics{}, ErrUncalibrated
	}
	return spatial.ComputeMetrics(m.Objects, m.WorkArea.Bounds(), m.ImageWidth, m.ImageHeight, m.Scale), nil
}
