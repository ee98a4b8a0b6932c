package osrm

import (
	"context"
	"testing"

	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var straightLineCoords = []geo.Coordinate{
	geo.NewCoordinate(0, 0),
	geo.NewCoordinate(0, 1),
	geo.NewCoordinate(1, 1),
}

func TestStraightLineTable(t *testing.T) {
	ctx := context.Background()

	distance := NewStraightLineClient("distance", 36)
	m, err := distance.Table(ctx, straightLineCoords)
	require.NoError(t, err)
	require.Equal(t, 3, m.Size())

	// one degree of longitude on the equator
	assert.InDelta(t, 111195, m.Get(0, 1), 1)
	assert.Equal(t, m.Get(0, 1), m.Get(1, 0))
	assert.Equal(t, 0.0, m.Get(2, 2))

	duration := NewStraightLineClient("duration", 36)
	dm, err := duration.Table(ctx, straightLineCoords)
	require.NoError(t, err)
	// 36 km/h is 10 m/s
	assert.InDelta(t, m.Get(0, 1)/10, dm.Get(0, 1), 1e-6)

	_, err = distance.Table(ctx, nil)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	_, err = distance.Table(ctx, []geo.Coordinate{geo.NewCoordinate(95, 0)})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestStraightLineRoute(t *testing.T) {
	c := NewStraightLineClient("distance", 0)
	route, err := c.Route(context.Background(), straightLineCoords)
	require.NoError(t, err)
	assert.Equal(t, straightLineCoords, route.GetGeometry())
	assert.InDelta(t, geo.PathLength(straightLineCoords), route.GetDistance(), 1e-9)
	// default speed 30 km/h
	assert.InDelta(t, route.GetDistance()/(30/3.6), route.GetDuration(), 1e-6)

	_, err = c.Route(context.Background(), straightLineCoords[:1])
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestNewProviderFromViper(t *testing.T) {
	util.SetDefaults()
	t.Cleanup(func() { viper.Set("ROUTING_PROVIDER", "osrm") })

	testCases := []struct {
		kind    string
		want    interface{}
		wantErr bool
	}{
		{kind: "osrm", want: &Client{}},
		{kind: "straight_line", want: &StraightLineClient{}},
		{kind: "carrier-pigeon", wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.kind, func(t *testing.T) {
			viper.Set("ROUTING_PROVIDER", tt.kind)
			p, err := NewProviderFromViper(zap.NewNop(), nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}
