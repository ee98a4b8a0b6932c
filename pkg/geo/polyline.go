package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords encodes coordinates with the Google polyline algorithm (precision 5).
func PolylineFromCoords(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, c := range path {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

func CoordsFromPolyline(encoded string) ([]Coordinate, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	path := make([]Coordinate, len(coords))
	for i, c := range coords {
		path[i] = NewCoordinate(c[0], c[1])
	}
	return path, nil
}
