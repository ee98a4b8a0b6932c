package usecases

import (
	"context"

	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/engine"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/osrm"
)

type PlannerEngine interface {
	Plan(m *da.CostMatrix, start da.Index, mustReturn bool) (*engine.Plan, error)
	PlanBatch(ctx context.Context, reqs []engine.PlanRequest) []engine.PlanResult
}

// MatrixProvider supplies the cost matrix between locations and the road geometry of an
// ordered path.
type MatrixProvider interface {
	Table(ctx context.Context, coords []geo.Coordinate) (*da.CostMatrix, error)
	Route(ctx context.Context, coords []geo.Coordinate) (*osrm.Route, error)
}
