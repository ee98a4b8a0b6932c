package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/Collectorx/pkg/util"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// Validate rejects latitudes outside [-90, 90] and longitudes outside [-180, 180].
func (c Coordinate) Validate() error {
	if !c.LatLng().IsValid() {
		return util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
			"invalid coordinate lat=%f lon=%f", c.Lat, c.Lon)
	}
	return nil
}

// Normalized wraps the longitude into [-180, 180] and clamps the latitude.
func (c Coordinate) Normalized() Coordinate {
	ll := c.LatLng().Normalized()
	return NewCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees())
}

// LonLatString formats the coordinate as "lon,lat" with six decimals.
func (c Coordinate) LonLatString() string {
	return strconv.FormatFloat(util.RoundFloat(c.Lon, 6), 'f', -1, 64) + "," +
		strconv.FormatFloat(util.RoundFloat(c.Lat, 6), 'f', -1, 64)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("Lat %.6f, Lng %.6f", c.Lat, c.Lon)
}

// JoinLonLat renders coordinates as "lon,lat;lon,lat;...".
func JoinLonLat(coords []Coordinate) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.LonLatString()
	}
	return strings.Join(parts, ";")
}

func ValidateCoordinates(coords []Coordinate) error {
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return util.WrapErrorf(err, util.ErrBadParamInput, "coordinate %d: %s", i, err.Error())
		}
	}
	return nil
}
