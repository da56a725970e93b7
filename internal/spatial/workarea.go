package spatial

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownWorkArea is returned for stored work areas of unrecognized shape.
var ErrUnknownWorkArea = errors.New("unrecognized work area format")

// WorkAreaKind tags the normalized form of a work area.
type WorkAreaKind string

const (
	// WorkAreaNone means the whole image is the work area.
	WorkAreaNone WorkAreaKind = "none"
	// WorkAreaPolygon is a user-drawn boundary.
	WorkAreaPolygon WorkAreaKind = "polygon"
)

// WorkArea is the normalized work area of a map.
type WorkArea struct {
	Kind    WorkAreaKind
	Polygon Polygon

	// Legacy is set when the stored form was the old rectangle object and
	// should be rewritten.
	Legacy bool
}

// NewWorkArea wraps a polygon, degrading to WorkAreaNone below three points.
func NewWorkArea(p Polygon) WorkArea {
	if !p.Valid() {
		return WorkArea{Kind: WorkAreaNone}
	}
	return WorkArea{Kind: WorkAreaPolygon, Polygon: p}
}

// Bounds returns the polygon to measure against, or nil for the whole image.
func (w WorkArea) Bounds() Polygon {
	if w.Kind != WorkAreaPolygon {
		return nil
	}
	return w.Polygon
}

// legacyRect is the pre-polygon work area shape.
type legacyRect struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// NormalizeWorkArea decodes a stored work area. It accepts null, an array of
// points, or the legacy {x, y, width, height} rectangle.
func NormalizeWorkArea(raw json.RawMessage) (WorkArea, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return WorkArea{Kind: WorkAreaNone}, nil
	}

	switch raw[0] {
	case '[':
		var points Polygon
		if err := json.Unmarshal(raw, &points); err != nil {
			return WorkArea{}, fmt.Errorf("decode work area points: %w", err)
		}
		return NewWorkArea(points), nil

	case '{':
		var rect legacyRect
		if err := json.Unmarshal(raw, &rect); err != nil {
			return WorkArea{}, fmt.Errorf("decode legacy work area: %w", err)
		}
		if rect.X == nil || rect.Y == nil || rect.Width == nil || rect.Height == nil {
			return WorkArea{}, ErrUnknownWorkArea
		}
		wa := WorkArea{Kind: WorkAreaNone, Legacy: true}
		if *rect.Width > 0 && *rect.Height > 0 {
			wa.Kind = WorkAreaPolygon
			wa.Polygon = Rect(*rect.X, *rect.Y, *rect.Width, *rect.Height)
		}
		return wa, nil
	}

	return WorkArea{}, ErrUnknownWorkArea
}

// UnmarshalJSON implements json.Unmarshaler via NormalizeWorkArea.
func (w *WorkArea) UnmarshalJSON(data []byte) error {
	wa, err := NormalizeWorkArea(data)
	if err != nil {
		return err
	}
	*w = wa
	return nil
}

// MarshalJSON always writes the modern form: a point array or null.
func (w WorkArea) MarshalJSON() ([]byte, error) {
	if w.Kind != WorkAreaPolygon {
		return []byte("null"), nil
	}
	return json.Marshal([]Point(w.Polygon))
}
