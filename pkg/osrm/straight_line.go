package osrm

import (
	"context"
	"fmt"

	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/metrics"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StraightLineClient serves cost matrices and routes from great-circle distances. It needs
// no routing server, so it backs offline planning and tests.
type StraightLineClient struct {
	annotation string
	speed      float64 // meters per second
}

func NewStraightLineClient(annotation string, speedKmh float64) *StraightLineClient {
	if speedKmh <= 0 {
		speedKmh = 30
	}
	return &StraightLineClient{
		annotation: annotation,
		speed:      speedKmh / 3.6,
	}
}

func (c *StraightLineClient) cost(meters float64) float64 {
	if c.annotation == "duration" {
		return meters / c.speed
	}
	return meters
}

func (c *StraightLineClient) Table(ctx context.Context, coords []geo.Coordinate) (*da.CostMatrix, error) {
	if len(coords) == 0 {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "no coordinates to build a cost matrix")
	}
	if err := geo.ValidateCoordinates(coords); err != nil {
		return nil, err
	}

	rows := make([][]float64, len(coords))
	for i := range coords {
		rows[i] = make([]float64, len(coords))
		for j := range coords {
			if i != j {
				rows[i][j] = c.cost(geo.HaversineDistance(coords[i], coords[j]))
			}
		}
	}
	return da.NewCostMatrix(rows)
}

func (c *StraightLineClient) Route(ctx context.Context, coords []geo.Coordinate) (*Route, error) {
	if len(coords) < 2 {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "a route needs at least two coordinates")
	}
	geometry := make([]geo.Coordinate, len(coords))
	copy(geometry, coords)

	distance := geo.PathLength(geometry)
	return &Route{
		Geometry: geometry,
		Distance: distance,
		Duration: distance / c.speed,
	}, nil
}

// Provider is what the routing service needs from a road network.
type Provider interface {
	Table(ctx context.Context, coords []geo.Coordinate) (*da.CostMatrix, error)
	Route(ctx context.Context, coords []geo.Coordinate) (*Route, error)
}

// NewProviderFromViper builds the provider named by ROUTING_PROVIDER ("osrm" or "straight_line").
func NewProviderFromViper(log *zap.Logger, metric *metrics.Metric) (Provider, error) {
	switch kind := viper.GetString("ROUTING_PROVIDER"); kind {
	case "", "osrm":
		return NewClient(ConfigFromViper(), log, metric)
	case "straight_line":
		log.Info("using straight line distances, no road network")
		return NewStraightLineClient(viper.GetString("OSRM_ANNOTATION"), viper.GetFloat64("STRAIGHT_LINE_SPEED_KMH")), nil
	default:
		return nil, fmt.Errorf("unknown routing provider %q", kind)
	}
}
