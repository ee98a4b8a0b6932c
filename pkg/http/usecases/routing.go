package usecases

import (
	"context"

	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/engine"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"go.uber.org/zap"
)

// CollectionRoute is a planned visit of the collection points. Order indexes into
// [depot, points...].
type CollectionRoute struct {
	Order    []int
	Cost     float64
	Distance float64 // meters, from the rendered path
	Duration float64 // seconds, from the rendered path
	Polyline string
	Geometry []geo.Coordinate
	Plan     *engine.Plan
}

type RoutingService struct {
	log      *zap.Logger
	engine   PlannerEngine
	provider MatrixProvider
}

func NewRoutingService(log *zap.Logger, engine PlannerEngine, provider MatrixProvider) *RoutingService {
	return &RoutingService{
		log:      log,
		engine:   engine,
		provider: provider,
	}
}

// ComputeTour plans over a caller supplied matrix; null (nil) entries are unreachable.
func (rs *RoutingService) ComputeTour(matrix [][]*float64, start int, mustReturn bool) (*engine.Plan, error) {
	m, err := da.NewCostMatrixNullable(matrix)
	if err != nil {
		return nil, err
	}
	return rs.engine.Plan(m, da.Index(start), mustReturn)
}

type TourQuery struct {
	Matrix     [][]*float64
	Start      int
	MustReturn bool
}

// ComputeTours plans independent queries concurrently. Each result carries its own error.
func (rs *RoutingService) ComputeTours(ctx context.Context, queries []TourQuery) []engine.PlanResult {
	results := make([]engine.PlanResult, len(queries))
	reqs := make([]engine.PlanRequest, 0, len(queries))
	pos := make([]int, 0, len(queries))
	for i, q := range queries {
		m, err := da.NewCostMatrixNullable(q.Matrix)
		if err != nil {
			results[i] = engine.PlanResult{Err: err}
			continue
		}
		reqs = append(reqs, engine.PlanRequest{Matrix: m, Start: da.Index(q.Start), MustReturn: q.MustReturn})
		pos = append(pos, i)
	}

	for j, res := range rs.engine.PlanBatch(ctx, reqs) {
		results[pos[j]] = res
	}
	return results
}

// PlanCollectionRoute fetches the cost matrix for [depot, points...], plans from the depot
// and fetches the road geometry of the resulting order.
func (rs *RoutingService) PlanCollectionRoute(ctx context.Context, depot geo.Coordinate, points []geo.Coordinate,
	mustReturn bool) (*CollectionRoute, error) {
	if len(points) == 0 {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "add at least one collection point")
	}

	coords := make([]geo.Coordinate, 0, len(points)+1)
	coords = append(coords, depot)
	coords = append(coords, points...)
	if err := geo.ValidateCoordinates(coords); err != nil {
		return nil, err
	}

	m, err := rs.provider.Table(ctx, coords)
	if err != nil {
		return nil, err
	}

	plan, err := rs.engine.Plan(m, 0, mustReturn)
	if err != nil {
		return nil, err
	}

	path := make([]geo.Coordinate, len(plan.Tour))
	for i, idx := range plan.Tour {
		path[i] = coords[idx]
	}
	route, err := rs.provider.Route(ctx, path)
	if err != nil {
		return nil, err
	}

	rs.log.Info("planned collection route", zap.Int("points", len(points)), zap.Bool("return_to_depot", mustReturn),
		zap.Float64("cost", plan.Cost), zap.Float64("initial_cost", plan.InitialCost))

	return &CollectionRoute{
		Order:    plan.Tour.Ints(),
		Cost:     plan.Cost,
		Distance: route.GetDistance(),
		Duration: route.GetDuration(),
		Polyline: geo.PolylineFromCoords(route.GetGeometry()),
		Geometry: route.GetGeometry(),
		Plan:     plan,
	}, nil
}
