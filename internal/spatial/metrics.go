package spatial

import "strings"

// ObjectType is the shape of a placed map object.
type ObjectType string

const (
	ObjectRectangle ObjectType = "rectangle"
	ObjectCircle    ObjectType = "circle"
)

// DefaultCategory groups objects placed without a category.
const DefaultCategory = "Sin categoría"

// Object is a placed instance on a map canvas.
type Object struct {
	ID   string     `json:"id"`
	Type ObjectType `json:"type"`

	// Width and Height are real-world meters. A circle uses Width as its
	// diameter.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// X and Y are image pixels: the top-left corner of a rectangle, the
	// center of a circle.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Rotation is in degrees and is display-only.
	Rotation float64 `json:"rotation"`

	Category string `json:"categoria"`
	Label    string `json:"label,omitempty"`
	Color    string `json:"color,omitempty"`
}

// Size returns the object's real-world width and height in meters.
func (o Object) Size() (float64, float64) {
	if o.Type == ObjectCircle {
		return o.Width, o.Width
	}
	return o.Width, o.Height
}

// AreaM2 is the footprint the object reserves: width times height.
func (o Object) AreaM2() float64 {
	w, h := o.Size()
	return w * h
}

// PixelCenter returns the object's center on the canvas for the given
// meters-per-pixel scale. A zero scale yields the anchor point unchanged.
func (o Object) PixelCenter(scale float64) Point {
	if o.Type == ObjectCircle || scale <= 0 {
		return Point{X: o.X, Y: o.Y}
	}
	w, h := o.Size()
	return Point{
		X: o.X + (w/scale)/2,
		Y: o.Y + (h/scale)/2,
	}
}

// CategoryLabel returns the trimmed category or DefaultCategory.
func (o Object) CategoryLabel() string {
	if c := strings.TrimSpace(o.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// Metrics summarizes space usage of a map.
type Metrics struct {
	TotalAreaM2       float64        `json:"totalAreaM2"`
	OccupiedAreaM2    float64        `json:"occupiedAreaM2"`
	FreeAreaM2        float64        `json:"freeAreaM2"`
	ObjectsByCategory map[string]int `json:"objectsByCategory"`
	TotalObjects      int            `json:"totalObjects"`
	InsideObjects     int            `json:"insideObjects"`
}

// ComputeMetrics measures the work area and the objects inside it.
//
// The work area is workArea when it has at least three vertices, otherwise
// the whole image. Free area is not clamped: a negative value means the
// objects claim more than the area holds.
//
// scale must be positive. Callers gate on calibration; with a zero scale the
// areas come back as degenerate zeros.
func ComputeMetrics(objects []Object, workArea Polygon, imageWidth, imageHeight, scale float64) Metrics {
	totalPx := imageWidth * imageHeight
	if workArea.Valid() {
		totalPx = PolygonArea(workArea)
	}

	m := Metrics{
		TotalAreaM2:       totalPx * scale * scale,
		ObjectsByCategory: make(map[string]int),
		TotalObjects:      len(objects),
	}

	for _, o := range objects {
		if workArea.Valid() && !ContainsPoint(workArea, o.PixelCenter(scale)) {
			continue
		}
		m.InsideObjects++
		m.OccupiedAreaM2 += o.AreaM2()
		m.ObjectsByCategory[o.CategoryLabel()]++
	}

	m.FreeAreaM2 = m.TotalAreaM2 - m.OccupiedAreaM2
	return m
}
