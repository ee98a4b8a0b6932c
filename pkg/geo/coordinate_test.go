package geo

import (
	"testing"

	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateValidate(t *testing.T) {
	testCases := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{name: "bengaluru", c: NewCoordinate(12.980708, 77.605916)},
		{name: "poles and antimeridian", c: NewCoordinate(-90, 180)},
		{name: "latitude too large", c: NewCoordinate(90.5, 0), wantErr: true},
		{name: "longitude too small", c: NewCoordinate(0, -180.5), wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	err := ValidateCoordinates([]Coordinate{NewCoordinate(1, 1), NewCoordinate(100, 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	assert.Contains(t, err.Error(), "coordinate 1")
}

func TestJoinLonLat(t *testing.T) {
	got := JoinLonLat([]Coordinate{
		NewCoordinate(12.980708, 77.605916),
		NewCoordinate(-6.2, 106.8166667),
	})
	assert.Equal(t, "77.605916,12.980708;106.816667,-6.2", got)
}

func TestNormalized(t *testing.T) {
	c := NewCoordinate(10, 190).Normalized()
	assert.InDelta(t, 10, c.GetLat(), 1e-9)
	assert.InDelta(t, -170, c.GetLon(), 1e-9)
}

func TestPolylineRoundTrip(t *testing.T) {
	path := []Coordinate{
		NewCoordinate(38.5, -120.2),
		NewCoordinate(40.7, -120.95),
		NewCoordinate(43.252, -126.453),
	}
	encoded := PolylineFromCoords(path)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := CoordsFromPolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(path))
	for i := range path {
		assert.InDelta(t, path[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, path[i].Lon, decoded[i].Lon, 1e-5)
	}

	assert.Equal(t, "", PolylineFromCoords(nil))
}

func TestHaversineDistance(t *testing.T) {
	a := NewCoordinate(0, 0)
	b := NewCoordinate(0, 1)
	assert.InDelta(t, 111195, HaversineDistance(a, b), 1)
	assert.Equal(t, HaversineDistance(a, b), HaversineDistance(b, a))
	assert.Equal(t, 0.0, HaversineDistance(a, a))

	path := []Coordinate{a, b, NewCoordinate(1, 1)}
	assert.InDelta(t, HaversineDistance(a, b)+HaversineDistance(b, path[2]), PathLength(path), 1e-9)
	assert.Equal(t, 0.0, PathLength(path[:1]))
}
