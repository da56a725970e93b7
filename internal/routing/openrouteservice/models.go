package openrouteservice

// directionsRequest is the body of POST /v2/directions/{profile}.
type directionsRequest struct {
	// Coordinates are [lon, lat] pairs.
	Coordinates  [][2]float64 `json:"coordinates"`
	Instructions bool         `json:"instructions"`
	Geometry     bool         `json:"geometry"`
	Units        string       `json:"units"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []routeSegment `json:"segments,omitempty"`
	} `json:"routes"`
}

type routeSegment struct {
	Steps []routeStep `json:"steps"`
}

type routeStep struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ORS error codes that change how a 4xx is classified.
const (
	codeRouteNotFound   = 2009
	codePointNotFound   = 2010
	codeDistanceTooLong = 2004
)
