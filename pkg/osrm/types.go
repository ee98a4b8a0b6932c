package osrm

import "github.com/lintang-b-s/Collectorx/pkg/geo"

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

type routeResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry struct {
		Type        string      `json:"type"`
		Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// Route is the road geometry through an ordered list of stops.
type Route struct {
	Geometry []geo.Coordinate
	Distance float64 // meters
	Duration float64 // seconds
}

func (r *Route) GetGeometry() []geo.Coordinate {
	return r.Geometry
}

func (r *Route) GetDistance() float64 {
	return r.Distance
}

func (r *Route) GetDuration() float64 {
	return r.Duration
}
