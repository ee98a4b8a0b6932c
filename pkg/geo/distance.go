package geo

import (
	"math"

	"github.com/lintang-b-s/Collectorx/pkg/util"
)

const (
	earthRadiusM = 6371000.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// HaversineDistance returns the great-circle distance between a and b in meters.
func HaversineDistance(a, b Coordinate) float64 {
	latOne := util.DegreeToRadians(a.Lat)
	latTwo := util.DegreeToRadians(b.Lat)
	dLat := latTwo - latOne
	dLon := util.DegreeToRadians(b.Lon - a.Lon)

	h := havFunction(dLat) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(dLon)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// PathLength sums the haversine length of every segment of path.
func PathLength(path []Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += HaversineDistance(path[i-1], path[i])
	}
	return total
}
